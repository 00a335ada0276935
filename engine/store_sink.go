package engine

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/dirt/blobstore"
	"github.com/hupe1980/dirt/internal/compress"
	"github.com/hupe1980/dirt/internal/hash"
	"github.com/hupe1980/dirt/manifest"
	"github.com/hupe1980/dirt/resource"
	"github.com/hupe1980/dirt/table"
)

// DefaultBlockPrefix is the name prefix of block files.
const DefaultBlockPrefix = "block-"

// StoreSinkOptions configures a StoreSink.
type StoreSinkOptions struct {
	// Prefix is prepended to block file names. If empty, defaults to
	// DefaultBlockPrefix.
	Prefix string

	// Compression selects the block file framing.
	Compression compress.Algorithm

	// Resources throttles block writes when it carries an IO limit.
	Resources *resource.Controller
}

// StoreSink writes every block as a result CSV to a blob store and records
// it in a manifest. Commit publishes the manifest once the run succeeded.
type StoreSink struct {
	store blobstore.BlobStore
	opts  StoreSinkOptions

	mu sync.Mutex
	m  *manifest.Manifest
}

var _ Sink = (*StoreSink)(nil)

// NewStoreSink creates a StoreSink that fills m. m.Columns names the ratio
// columns of the written tables.
func NewStoreSink(store blobstore.BlobStore, m *manifest.Manifest, opts StoreSinkOptions) *StoreSink {
	if opts.Prefix == "" {
		opts.Prefix = DefaultBlockPrefix
	}
	m.Compression = opts.Compression.String()
	return &StoreSink{store: store, opts: opts, m: m}
}

// NewManifest returns an empty manifest describing a run of e over the
// named input.
func (e *Engine) NewManifest(input string) *manifest.Manifest {
	m := manifest.New(e.ranges(), e.cfg.TopN, e.cfg.Epsilon)
	m.Matrix = input
	m.Genes = e.m.Rows()
	m.Columns = append([]string(nil), e.layout.All.Names...)
	return m
}

// BlockName returns the blob name of block seq. Blocks live under a
// directory named after the manifest's run so later runs into the same
// output never overwrite blocks an older manifest references.
func (s *StoreSink) BlockName(seq int) string {
	name := fmt.Sprintf("%s%04d.csv%s", s.opts.Prefix, seq, s.opts.Compression.Ext())
	if s.m.Run == "" {
		return name
	}
	return "run-" + s.m.Run + "/" + name
}

// WriteBlock implements Sink.
func (s *StoreSink) WriteBlock(ctx context.Context, b *Block) error {
	name := s.BlockName(b.Seq)

	wb, err := s.store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	size, sum, err := s.encode(ctx, wb, b)
	if err != nil {
		_ = blobstore.Abort(wb)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := wb.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	info := manifest.BlockInfo{
		Seq:         b.Seq,
		Name:        name,
		FirstTarget: b.First(),
		LastTarget:  b.Last(),
		Targets:     len(b.Targets),
		Records:     len(b.Records),
		Skipped:     len(b.Skipped),
		Degenerate:  b.Degenerate,
		Size:        size,
		CRC32C:      sum,
	}

	s.mu.Lock()
	s.m.AddBlock(info)
	s.mu.Unlock()
	return nil
}

func (s *StoreSink) encode(ctx context.Context, w io.Writer, b *Block) (int64, uint32, error) {
	hw := hash.NewWriter(s.opts.Resources.Writer(ctx, w))

	cw, err := compress.NewWriter(hw, s.opts.Compression)
	if err != nil {
		return 0, 0, err
	}

	tw := table.NewWriter(cw, s.m.Columns)
	if err := tw.WriteHeader(); err != nil {
		return 0, 0, err
	}
	for _, c := range b.Records {
		if err := tw.WriteCandidate(c); err != nil {
			return 0, 0, err
		}
	}
	if err := tw.Flush(); err != nil {
		return 0, 0, err
	}
	if err := cw.Close(); err != nil {
		return 0, 0, err
	}
	return hw.Size(), hw.Sum32(), nil
}

// Manifest returns a copy of the manifest built so far.
func (s *StoreSink) Manifest() *manifest.Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := *s.m
	m.Blocks = append([]manifest.BlockInfo(nil), s.m.Blocks...)
	m.Columns = append([]string(nil), s.m.Columns...)
	return &m
}

// Commit saves the manifest through a manifest store on the sink's blob
// store and points CURRENT at it.
func (s *StoreSink) Commit(ctx context.Context) (*manifest.Manifest, error) {
	m := s.Manifest()
	if err := manifest.NewStore(s.store).Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
