package table

import (
	"encoding/csv"
	"io"

	"github.com/hupe1980/dirt/matrix"
)

// WriteMatrix writes m as an expression CSV that ReadMatrix accepts with
// the same options.
func WriteMatrix(w io.Writer, m *matrix.Matrix, opts ReadOptions) error {
	opts = opts.withDefaults()

	cw := csv.NewWriter(w)
	cw.Comma = opts.Comma

	samples := m.Samples()
	record := make([]string, len(samples)+1)
	record[0] = opts.GeneColumn
	copy(record[1:], samples)
	if err := cw.Write(record); err != nil {
		return err
	}

	genes := m.Genes()
	for i, g := range genes {
		row, err := m.Row(i)
		if err != nil {
			return err
		}
		record[0] = g
		for j, v := range row {
			record[j+1] = FormatFloat(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
