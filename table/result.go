package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/dirt/selector"
)

const (
	// IDColumn is the header of the pair identifier column.
	IDColumn = "ID"
	// NDIVColumn is the header of the score column.
	NDIVColumn = "ndiv"
)

// ErrColumnMismatch is returned when tables with different ratio columns
// are combined.
var ErrColumnMismatch = errors.New("table: ratio columns differ")

// Row is one line of a result table.
type Row struct {
	ID     string
	NDIV   float64
	Ratios []float64
}

// RowOf converts a ranked candidate into a result row.
func RowOf(c selector.Candidate) Row {
	return Row{ID: c.ID(), NDIV: c.NDIV, Ratios: c.Ratios}
}

// Table is an in-memory result table.
type Table struct {
	Columns []string // ratio column names, one per all-range sample
	Rows    []Row
}

// New creates an empty table with the given ratio columns.
func New(columns []string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// Header returns the CSV header of t.
func (t *Table) Header() []string {
	return Header(t.Columns)
}

// Header returns the CSV header for the given ratio columns.
func Header(columns []string) []string {
	h := make([]string, 0, len(columns)+2)
	h = append(h, IDColumn, NDIVColumn)
	return append(h, columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds candidates in order.
func (t *Table) Append(cands ...selector.Candidate) {
	for _, c := range cands {
		t.Rows = append(t.Rows, RowOf(c))
	}
}

// Concat appends the rows of each table in argument order.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return &Table{}, nil
	}
	out := New(tables[0].Columns)
	for i, t := range tables {
		if !slices.Equal(t.Columns, out.Columns) {
			return nil, fmt.Errorf("%w: table %d", ErrColumnMismatch, i)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out, nil
}

// WriteTo writes t as CSV, header first.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := NewWriter(cw, t.Columns)
	if err := tw.WriteHeader(); err != nil {
		return cw.n, err
	}
	for _, r := range t.Rows {
		if err := tw.WriteRow(r); err != nil {
			return cw.n, err
		}
	}
	err := tw.Flush()
	return cw.n, err
}

// Writer streams result rows as CSV.
type Writer struct {
	cw      *csv.Writer
	columns []string
	header  bool
	record  []string
	rows    int
}

// NewWriter creates a Writer for the given ratio columns.
func NewWriter(w io.Writer, columns []string) *Writer {
	return &Writer{
		cw:      csv.NewWriter(w),
		columns: slices.Clone(columns),
		record:  make([]string, len(columns)+2),
	}
}

// WriteHeader writes the header row. It is a no-op after the first call.
func (w *Writer) WriteHeader() error {
	if w.header {
		return nil
	}
	w.header = true
	return w.cw.Write(Header(w.columns))
}

// WriteCandidate writes one candidate row.
func (w *Writer) WriteCandidate(c selector.Candidate) error {
	return w.WriteRow(RowOf(c))
}

// WriteRow writes one row, emitting the header first if needed.
func (w *Writer) WriteRow(r Row) error {
	if len(r.Ratios) != len(w.columns) {
		return fmt.Errorf("%w: row %q has %d ratios, want %d", ErrColumnMismatch, r.ID, len(r.Ratios), len(w.columns))
	}
	if err := w.WriteHeader(); err != nil {
		return err
	}
	w.record[0] = r.ID
	w.record[1] = FormatFloat(r.NDIV)
	for i, v := range r.Ratios {
		w.record[i+2] = FormatFloat(v)
	}
	w.rows++
	return w.cw.Write(w.record)
}

// Rows returns the number of rows written.
func (w *Writer) Rows() int { return w.rows }

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

// FormatFloat renders v in the shortest form that parses back exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseFloat parses a result cell. An empty cell is NaN.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// ReadResults parses a result CSV.
func ReadResults(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table: empty result")
	}
	if err != nil {
		return nil, fmt.Errorf("table: read header: %w", err)
	}
	if len(header) < 2 || header[0] != IDColumn || header[1] != NDIVColumn {
		return nil, fmt.Errorf("table: result header must start with %q,%q", IDColumn, NDIVColumn)
	}

	t := New(header[2:])
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: read line %d: %w", line, err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("table: line %d has %d fields, header has %d", line, len(rec), len(header))
		}

		row := Row{ID: rec[0], Ratios: make([]float64, len(rec)-2)}
		if row.NDIV, err = ParseFloat(rec[1]); err != nil {
			return nil, fmt.Errorf("%w: line %d column %q: %q", ErrParse, line, NDIVColumn, rec[1])
		}
		for i, cell := range rec[2:] {
			if row.Ratios[i], err = ParseFloat(cell); err != nil {
				return nil, fmt.Errorf("%w: line %d column %q: %q", ErrParse, line, t.Columns[i], cell)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
