package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/dirt/blobstore"
	"github.com/hupe1980/dirt/internal/compress"
	"github.com/hupe1980/dirt/matrix"
	"github.com/hupe1980/dirt/resource"
)

// DefaultGeneColumn is the header of the gene identifier column.
const DefaultGeneColumn = "Geneid"

// ErrParse is returned when a cell is not a number.
var ErrParse = errors.New("table: invalid number")

// ReadOptions configures ReadMatrix.
type ReadOptions struct {
	// GeneColumn is the expected header of the first column. If empty,
	// defaults to DefaultGeneColumn. Set AnyGeneColumn to accept any name.
	GeneColumn string

	// AnyGeneColumn disables the first column header check.
	AnyGeneColumn bool

	// Comma is the field delimiter. If 0, defaults to ','.
	Comma rune
}

func (o ReadOptions) withDefaults() ReadOptions {
	if o.GeneColumn == "" {
		o.GeneColumn = DefaultGeneColumn
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
	return o
}

// ReadMatrix parses an expression CSV into a validated Matrix.
func ReadMatrix(r io.Reader, opts ReadOptions) (*matrix.Matrix, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", matrix.ErrShape)
	}
	if err != nil {
		return nil, fmt.Errorf("table: read header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: header has %d columns, need a gene column and at least one sample", matrix.ErrShape, len(header))
	}

	first := strings.TrimPrefix(strings.TrimSpace(header[0]), "\ufeff")
	if !opts.AnyGeneColumn && first != opts.GeneColumn {
		return nil, fmt.Errorf("%w: first column is %q, want %q", matrix.ErrShape, first, opts.GeneColumn)
	}

	samples := make([]string, len(header)-1)
	for j, h := range header[1:] {
		samples[j] = strings.TrimSpace(h)
	}

	var (
		genes  []string
		values []float64
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: read line %d: %w", line, err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", matrix.ErrShape, line, len(rec), len(header))
		}

		genes = append(genes, strings.TrimSpace(rec[0]))
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %q", ErrParse, line, samples[j], cell)
			}
			values = append(values, v)
		}
	}

	m, err := matrix.New(genes, samples, values)
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	return m, nil
}

// LoadOptions configures LoadMatrix.
type LoadOptions struct {
	ReadOptions

	// Resources throttles reads when it carries an IO limit. May be nil.
	Resources *resource.Controller
}

// LoadMatrix reads the named expression CSV from a blob store. Names ending
// in .zst or .lz4 are decompressed, and a .tsv name (before the compression
// suffix) switches the default delimiter to a tab.
func LoadMatrix(ctx context.Context, store blobstore.BlobStore, name string, opts LoadOptions) (*matrix.Matrix, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", name, err)
	}
	defer b.Close()

	rc, err := blobstore.NewReader(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("table: read %s: %w", name, err)
	}
	defer rc.Close()

	algo := compress.FromPath(name)
	dr, err := compress.NewReader(opts.Resources.Reader(ctx, rc), algo)
	if err != nil {
		return nil, fmt.Errorf("table: %s: %w", name, err)
	}
	defer dr.Close()

	ro := opts.ReadOptions
	if ro.Comma == 0 && strings.HasSuffix(strings.TrimSuffix(name, algo.Ext()), ".tsv") {
		ro.Comma = '\t'
	}

	m, err := ReadMatrix(dr, ro)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}
