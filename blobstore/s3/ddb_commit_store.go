package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/dirt/blobstore"
)

// CurrentName is the pointer blob naming the committed run manifest.
const CurrentName = "CURRENT"

// Commit table attributes.
const (
	attrBaseURI     = "base_uri"
	attrVersion     = "version"
	attrManifest    = "manifest"
	attrCommittedAt = "committed_at"
)

// ErrConcurrentModification is returned when another writer committed the
// same version first.
var ErrConcurrentModification = errors.New("s3: concurrent modification detected")

// DDBClient is the part of the DynamoDB API the commit store calls.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCommitStore is a Store whose CURRENT pointer is an append-only log
// in DynamoDB. Each write of CURRENT claims the next version with a
// conditional put, so of two runs publishing into one prefix exactly one
// wins and the other gets ErrConcurrentModification. Every other blob
// goes to S3 unchanged.
//
// The table is keyed by base_uri (string, partition) and version
// (number, sort):
//
//	aws dynamodb create-table \
//	  --table-name dirt-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	*Store
	ddb     DDBClient
	table   string
	baseURI string
	now     func() time.Time
}

var _ blobstore.BlobStore = (*DDBCommitStore)(nil)

// NewDDBCommitStore layers the commit log over store. baseURI, usually
// "s3://bucket/prefix", partitions the table between run prefixes.
func NewDDBCommitStore(store *Store, ddb DDBClient, table, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{Store: store, ddb: ddb, table: table, baseURI: baseURI, now: time.Now}
}

func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != CurrentName {
		return s.Store.Open(ctx, name)
	}
	head, err := s.head(ctx)
	if err != nil {
		return nil, err
	}
	if head.version == 0 {
		return nil, blobstore.ErrNotFound
	}
	return blobstore.BytesBlob([]byte(head.manifest)), nil
}

func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != CurrentName {
		return s.Store.Put(ctx, name, data)
	}
	head, err := s.head(ctx)
	if err != nil {
		return err
	}
	return s.append(ctx, head.version+1, string(data))
}

// Delete leaves the commit log alone; only S3 blobs are removed.
func (s *DDBCommitStore) Delete(ctx context.Context, name string) error {
	if name == CurrentName {
		return nil
	}
	return s.Store.Delete(ctx, name)
}

// Version returns the newest committed version, or 0 before the first
// commit.
func (s *DDBCommitStore) Version(ctx context.Context) (uint64, error) {
	head, err := s.head(ctx)
	return head.version, err
}

type commit struct {
	version  uint64
	manifest string
}

func (s *DDBCommitStore) head(ctx context.Context) (commit, error) {
	out, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String(attrBaseURI + " = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return commit{}, fmt.Errorf("s3: query commit log: %w", err)
	}
	if len(out.Items) == 0 {
		return commit{}, nil
	}
	return parseCommit(out.Items[0])
}

func parseCommit(item map[string]types.AttributeValue) (commit, error) {
	v, ok := item[attrVersion].(*types.AttributeValueMemberN)
	if !ok {
		return commit{}, fmt.Errorf("s3: commit log item without numeric %s", attrVersion)
	}
	m, ok := item[attrManifest].(*types.AttributeValueMemberS)
	if !ok {
		return commit{}, fmt.Errorf("s3: commit log item without string %s", attrManifest)
	}
	version, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return commit{}, fmt.Errorf("s3: commit log version %q: %w", v.Value, err)
	}
	return commit{version: version, manifest: m.Value}, nil
}

func (s *DDBCommitStore) append(ctx context.Context, version uint64, manifest string) error {
	_, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			attrBaseURI:     &types.AttributeValueMemberS{Value: s.baseURI},
			attrVersion:     &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			attrManifest:    &types.AttributeValueMemberS{Value: manifest},
			attrCommittedAt: &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(" + attrVersion + ")"),
	})
	var conflict *types.ConditionalCheckFailedException
	switch {
	case errors.As(err, &conflict):
		return fmt.Errorf("%w: version %d", ErrConcurrentModification, version)
	case err != nil:
		return fmt.Errorf("s3: commit version %d: %w", version, err)
	}
	return nil
}
