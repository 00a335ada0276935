package table

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/dirt/blobstore"
	"github.com/hupe1980/dirt/internal/compress"
	"github.com/hupe1980/dirt/matrix"
	"github.com/hupe1980/dirt/resource"
	"github.com/hupe1980/dirt/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Geneid,C1,C2,T1
G1,10,10,4
G2,20,20,8
G3,5,15,0
`

func TestReadMatrix(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(sampleCSV), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"G1", "G2", "G3"}, m.Genes())
	assert.Equal(t, []string{"C1", "C2", "T1"}, m.Samples())

	row, err := m.Row(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 15, 0}, row)
}

func TestReadMatrixOptions(t *testing.T) {
	t.Run("tab delimited", func(t *testing.T) {
		in := "Geneid\tC1\nA\t1\n"
		m, err := ReadMatrix(strings.NewReader(in), ReadOptions{Comma: '\t'})
		require.NoError(t, err)
		assert.Equal(t, 1, m.Rows())
	})

	t.Run("custom gene column", func(t *testing.T) {
		in := "gene,C1\nA,1\n"
		_, err := ReadMatrix(strings.NewReader(in), ReadOptions{GeneColumn: "gene"})
		require.NoError(t, err)

		_, err = ReadMatrix(strings.NewReader(in), ReadOptions{})
		assert.ErrorIs(t, err, matrix.ErrShape)

		_, err = ReadMatrix(strings.NewReader(in), ReadOptions{AnyGeneColumn: true})
		assert.NoError(t, err)
	})

	t.Run("byte order mark", func(t *testing.T) {
		in := "\ufeffGeneid,C1\nA,1\n"
		_, err := ReadMatrix(strings.NewReader(in), ReadOptions{})
		assert.NoError(t, err)
	})
}

func TestReadMatrixErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", matrix.ErrShape},
		{"header only", "Geneid,C1\n", matrix.ErrShape},
		{"no samples", "Geneid\nA\n", matrix.ErrShape},
		{"ragged", "Geneid,C1,C2\nA,1\n", matrix.ErrShape},
		{"not a number", "Geneid,C1\nA,x\n", ErrParse},
		{"nan", "Geneid,C1\nA,NaN\n", matrix.ErrNonFinite},
		{"inf", "Geneid,C1\nA,+Inf\n", matrix.ErrNonFinite},
		{"negative", "Geneid,C1\nA,-1\n", matrix.ErrNegativeValue},
		{"duplicate sample", "Geneid,C1,C1\nA,1,2\n", matrix.ErrDuplicateSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMatrix(strings.NewReader(tt.in), ReadOptions{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadMatrixErrorContext(t *testing.T) {
	_, err := ReadMatrix(strings.NewReader("Geneid,C1,C2\nA,1,2\nB,3,oops\n"), ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), `"C2"`)
}

func TestLoadMatrix(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	for _, algo := range []compress.Algorithm{compress.None, compress.Zstd, compress.LZ4} {
		t.Run(algo.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := compress.NewWriter(&buf, algo)
			require.NoError(t, err)
			_, err = w.Write([]byte(sampleCSV))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			name := "input/matrix.csv" + algo.Ext()
			require.NoError(t, store.Put(ctx, name, buf.Bytes()))

			m, err := LoadMatrix(ctx, store, name, LoadOptions{})
			require.NoError(t, err)
			assert.Equal(t, 3, m.Rows())
			assert.Equal(t, 3, m.Cols())
		})
	}

	t.Run("tsv suffix", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "input/matrix.tsv", []byte("Geneid\tC1\tC2\nA\t1\t2\n")))
		m, err := LoadMatrix(ctx, store, "input/matrix.tsv", LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, m.Cols())
	})

	t.Run("rate limited", func(t *testing.T) {
		rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
		m, err := LoadMatrix(ctx, store, "input/matrix.csv", LoadOptions{Resources: rc})
		require.NoError(t, err)
		assert.Equal(t, 3, m.Rows())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadMatrix(ctx, store, "input/none.csv", LoadOptions{})
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}

func TestWriteMatrixRoundTrip(t *testing.T) {
	m := testutil.NewRNG(9).ExpressionMatrix(6, 3, 2)

	for _, opts := range []ReadOptions{{}, {Comma: '\t', GeneColumn: "gene"}} {
		var buf bytes.Buffer
		require.NoError(t, WriteMatrix(&buf, m, opts))

		got, err := ReadMatrix(&buf, opts)
		require.NoError(t, err)
		assert.Equal(t, m.Genes(), got.Genes())
		assert.Equal(t, m.Samples(), got.Samples())
		for i := range m.Rows() {
			want, _ := m.Row(i)
			row, _ := got.Row(i)
			assert.Equal(t, want, row)
		}
	}
}
