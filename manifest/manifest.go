package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/dirt/blobstore"
	"github.com/hupe1980/dirt/codec"
	"github.com/hupe1980/dirt/matrix"
)

const (
	ManifestFileName = "MANIFEST"
	CurrentFileName  = "CURRENT"
	// CurrentVersion is the version of the manifest format.
	CurrentVersion = 1
)

// Manifest describes a finished run.
type Manifest struct {
	Version   int       `json:"version"`
	ID        uint64    `json:"id"`
	Run       string    `json:"run,omitempty"` // unique per run; scopes block names
	CreatedAt time.Time `json:"created_at"`

	Matrix      string   `json:"matrix"` // input blob name or path
	Genes       int      `json:"genes"`
	TopN        int      `json:"top_n"`
	Epsilon     float64  `json:"epsilon"`
	Control     Range    `json:"control"`
	All         Range    `json:"all"`
	Columns     []string `json:"columns"` // ratio columns of the result table
	Compression string   `json:"compression"`

	Blocks []BlockInfo `json:"blocks"`
}

// Range is an inclusive pair of sample labels.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BlockInfo describes one result block file.
type BlockInfo struct {
	Seq         int    `json:"seq"`
	Name        string `json:"name"` // relative to the store root
	FirstTarget int    `json:"first_target"`
	LastTarget  int    `json:"last_target"`
	Targets     int    `json:"targets"`
	Records     int    `json:"records"`
	Skipped     int    `json:"skipped"`
	Degenerate  int    `json:"degenerate"`
	Size        int64  `json:"size"` // stored (possibly compressed) size
	CRC32C      uint32 `json:"crc32c"`
}

// New creates an empty manifest for a run with the given range configuration.
func New(cfg matrix.RangeConfig, topN int, epsilon float64) *Manifest {
	return &Manifest{
		Version:   CurrentVersion,
		Run:       uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		TopN:      topN,
		Epsilon:   epsilon,
		Control:   Range{Start: cfg.ControlStart, End: cfg.ControlEnd},
		All:       Range{Start: cfg.AllStart, End: cfg.AllEnd},
	}
}

// RangeConfig returns the range configuration the run used.
func (m *Manifest) RangeConfig() matrix.RangeConfig {
	return matrix.RangeConfig{
		ControlStart: m.Control.Start,
		ControlEnd:   m.Control.End,
		AllStart:     m.All.Start,
		AllEnd:       m.All.End,
	}
}

// AddBlock records b, keeping blocks ordered by Seq. A block with the same
// Seq replaces the earlier entry.
func (m *Manifest) AddBlock(b BlockInfo) {
	i, found := slices.BinarySearchFunc(m.Blocks, b.Seq, func(e BlockInfo, seq int) int { return e.Seq - seq })
	if found {
		m.Blocks[i] = b
		return
	}
	m.Blocks = slices.Insert(m.Blocks, i, b)
}

// Records returns the total number of records across blocks.
func (m *Manifest) Records() int {
	n := 0
	for _, b := range m.Blocks {
		n += b.Records
	}
	return n
}

// Targets returns the total number of targets across blocks.
func (m *Manifest) Targets() int {
	n := 0
	for _, b := range m.Blocks {
		n += b.Targets
	}
	return n
}

// Store manages manifest blobs and the CURRENT pointer.
type Store struct {
	store blobstore.BlobStore
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a new manifest store.
func NewStore(store blobstore.BlobStore) *Store {
	return &Store{store: store, codec: codec.Default}
}

// BlobStore returns the underlying blob store.
func (s *Store) BlobStore() blobstore.BlobStore { return s.store }

// Load loads the current manifest.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	return s.LoadVersion(ctx, 0)
}

// LoadVersion loads a specific version ID. 0 means the version CURRENT
// points at.
func (s *Store) LoadVersion(ctx context.Context, versionID uint64) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fileName(versionID)
	if versionID == 0 {
		content, err := blobstore.ReadAll(ctx, s.store, CurrentFileName)
		if err != nil {
			if errors.Is(err, blobstore.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		name = strings.TrimSpace(string(content))
	}

	return s.read(ctx, name)
}

func (s *Store) read(ctx context.Context, name string) (*Manifest, error) {
	data, err := blobstore.ReadAll(ctx, s.store, name)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", name, err)
	}

	var m Manifest
	if err := s.codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode %s: %w", name, err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrIncompatibleVersion, m.Version, CurrentVersion)
	}
	return &m, nil
}

// ListVersions returns the IDs of all stored manifests in ascending order.
func (s *Store) ListVersions(ctx context.Context) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions(ctx)
}

func (s *Store) versions(ctx context.Context) ([]uint64, error) {
	names, err := s.store.List(ctx, ManifestFileName+"-")
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, n := range names {
		if id, ok := parseFileName(path.Base(n)); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Save writes m as a new version and points CURRENT at it. The version ID
// is one past the larger of m.ID and the newest stored version.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.versions(ctx)
	if err != nil {
		return fmt.Errorf("manifest: list versions: %w", err)
	}
	next := m.ID
	if len(ids) > 0 {
		next = max(next, ids[len(ids)-1])
	}

	m.Version = CurrentVersion
	m.ID = next + 1
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	data, err := s.codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}

	name := fileName(m.ID)
	if err := s.store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("manifest: write %s: %w", name, err)
	}

	if err := s.store.Put(ctx, CurrentFileName, []byte(name)); err != nil {
		return fmt.Errorf("manifest: publish %s: %w", name, err)
	}
	return nil
}

// DeleteVersion deletes the manifest file for the given version.
func (s *Store) DeleteVersion(ctx context.Context, versionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, fileName(versionID))
}

func fileName(id uint64) string {
	return fmt.Sprintf("%s-%06d.json", ManifestFileName, id)
}

func parseFileName(name string) (uint64, bool) {
	digits, ok := strings.CutPrefix(name, ManifestFileName+"-")
	if !ok {
		return 0, false
	}
	if digits, ok = strings.CutSuffix(digits, ".json"); !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
