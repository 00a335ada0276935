// Package report renders summaries of a run as plots.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hupe1980/dirt/selector"
)

// DefaultBins is the histogram bin count used when none is given.
const DefaultBins = 20

var (
	// ErrNoScores is returned when no target has a finite best score.
	ErrNoScores = errors.New("report: no finite scores")

	// ErrFormat is returned for unsupported image formats.
	ErrFormat = errors.New("report: unsupported image format")
)

// Size of rendered plots.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// BestScores returns the finite NDIV of every rank-1 record.
func BestScores(records []selector.Candidate) []float64 {
	var out []float64
	for _, c := range records {
		if c.Rank == 1 && !c.Degenerate() {
			out = append(out, c.NDIV)
		}
	}
	return out
}

// Histogram plots the distribution of the best candidate score per target.
func Histogram(records []selector.Candidate, bins int) (*plot.Plot, error) {
	scores := BestScores(records)
	if len(scores) == 0 {
		return nil, ErrNoScores
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	h, err := plotter.NewHist(plotter.Values(scores), bins)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Best candidate NDIV (%d targets)", len(scores))
	p.X.Label.Text = "ndiv"
	p.Y.Label.Text = "targets"
	p.Add(h)
	return p, nil
}

// Save writes p to path. The format follows the extension: .png, .svg or .pdf.
func Save(p *plot.Plot, path string) error {
	if _, err := format(path); err != nil {
		return err
	}
	return p.Save(Width, Height, path)
}

// WriteTo renders p in the format implied by name's extension.
func WriteTo(p *plot.Plot, w io.Writer, name string) (int64, error) {
	f, err := format(name)
	if err != nil {
		return 0, err
	}
	wt, err := p.WriterTo(Width, Height, f)
	if err != nil {
		return 0, fmt.Errorf("report: %w", err)
	}
	return wt.WriteTo(w)
}

func format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf":
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrFormat, filepath.Ext(path))
	}
}
