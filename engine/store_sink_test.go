package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/dirt/blobstore"
	"github.com/hupe1980/dirt/internal/compress"
	"github.com/hupe1980/dirt/manifest"
	"github.com/hupe1980/dirt/resource"
	"github.com/hupe1980/dirt/table"
	"github.com/hupe1980/dirt/targets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	blobstore.BlobStore
}

func (failingStore) Create(context.Context, string) (blobstore.WritableBlob, error) {
	return nil, errors.New("disk full")
}

func TestStoreSinkRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, algo := range []compress.Algorithm{compress.None, compress.Zstd, compress.LZ4} {
		t.Run(algo.String(), func(t *testing.T) {
			e := newTestEngine(t, 30, Config{TopN: 3, Blocks: 3})
			store := blobstore.NewMemoryStore()

			sink := NewStoreSink(store, e.NewManifest("input.csv"), StoreSinkOptions{
				Compression: algo,
				Resources:   resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 24}),
			})
			col := NewCollector()

			stats, err := e.Run(ctx, targets.All(30), Tee(sink, col))
			require.NoError(t, err)

			committed, err := sink.Commit(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), committed.ID)

			m, err := manifest.NewStore(store).Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, "input.csv", m.Matrix)
			assert.Equal(t, 30, m.Genes)
			assert.Equal(t, 3, m.TopN)
			assert.Equal(t, algo.String(), m.Compression)
			assert.Equal(t, e.Layout().All.Names, m.Columns)
			require.Len(t, m.Blocks, 3)
			assert.Equal(t, stats.Records, m.Records())
			assert.Equal(t, 30, m.Targets())
			for i, b := range m.Blocks {
				assert.Equal(t, i, b.Seq)
				assert.Equal(t, sink.BlockName(i), b.Name)
			}
			assert.Equal(t, 0, m.Blocks[0].FirstTarget)
			assert.Equal(t, 29, m.Blocks[2].LastTarget)

			var buf bytes.Buffer
			_, err = manifest.Merge(ctx, store, m, &buf)
			require.NoError(t, err)

			merged, err := table.ReadResults(&buf)
			require.NoError(t, err)
			want := col.Records()
			require.Equal(t, len(want), merged.Len())
			for i, c := range want {
				assert.Equal(t, c.ID(), merged.Rows[i].ID)
				assert.Equal(t, c.NDIV, merged.Rows[i].NDIV)
				assert.Equal(t, c.Ratios, merged.Rows[i].Ratios)
			}
		})
	}
}

func TestStoreSinkCorruptBlock(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, 10, Config{TopN: 2, Blocks: 2})
	store := blobstore.NewMemoryStore()

	sink := NewStoreSink(store, e.NewManifest("input.csv"), StoreSinkOptions{})
	_, err := e.Run(ctx, targets.All(10), sink)
	require.NoError(t, err)
	m, err := sink.Commit(ctx)
	require.NoError(t, err)

	data, err := blobstore.ReadAll(ctx, store, m.Blocks[1].Name)
	require.NoError(t, err)
	data[len(data)-2] ^= 0x01
	require.NoError(t, store.Put(ctx, m.Blocks[1].Name, data))

	_, err = manifest.Merge(ctx, store, m, &bytes.Buffer{})
	assert.ErrorIs(t, err, manifest.ErrChecksumMismatch)
}

func TestStoreSinkWriteError(t *testing.T) {
	e := newTestEngine(t, 10, Config{TopN: 2})
	sink := NewStoreSink(failingStore{blobstore.NewMemoryStore()}, e.NewManifest("x"), StoreSinkOptions{Prefix: "run/b-"})

	_, err := e.Run(context.Background(), targets.All(10), sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "run-"+sink.m.Run+"/run/b-0003.csv", sink.BlockName(3))

	bare := NewStoreSink(blobstore.NewMemoryStore(), &manifest.Manifest{}, StoreSinkOptions{Prefix: "b-"})
	assert.Equal(t, "b-0003.csv", bare.BlockName(3))
}

func TestStoreSinkRerunKeepsOlderVersions(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	ms := manifest.NewStore(store)

	runOnce := func(topN int) ([]string, *manifest.Manifest) {
		e := newTestEngine(t, 12, Config{TopN: topN, Blocks: 2})
		sink := NewStoreSink(store, e.NewManifest("input.csv"), StoreSinkOptions{Prefix: DefaultBlockPrefix})
		col := NewCollector()
		_, err := e.Run(ctx, targets.All(12), Tee(sink, col))
		require.NoError(t, err)
		m, err := sink.Commit(ctx)
		require.NoError(t, err)

		ids := make([]string, 0, len(col.Records()))
		for _, c := range col.Records() {
			ids = append(ids, c.ID())
		}
		return ids, m
	}

	first, m1 := runOnce(2)
	_, m2 := runOnce(4)
	assert.Equal(t, uint64(1), m1.ID)
	assert.Equal(t, uint64(2), m2.ID)
	assert.NotEqual(t, m1.Blocks[0].Name, m2.Blocks[0].Name)

	old, err := ms.LoadVersion(ctx, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = ms.Merge(ctx, old, &buf)
	require.NoError(t, err)

	merged, err := table.ReadResults(&buf)
	require.NoError(t, err)
	require.Equal(t, len(first), merged.Len())
	for i, id := range first {
		assert.Equal(t, id, merged.Rows[i].ID)
	}
}
