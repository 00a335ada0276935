package matrix

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned when a column range cannot be resolved
	// against the matrix columns.
	ErrConfiguration = errors.New("matrix: invalid column configuration")

	// ErrIndexOutOfRange is returned when a row index is outside [0, Rows()).
	ErrIndexOutOfRange = errors.New("matrix: row index out of range")

	// ErrShape is returned for empty or ragged input.
	ErrShape = errors.New("matrix: invalid shape")

	// ErrNonFinite is returned when a value is NaN or ±Inf.
	ErrNonFinite = errors.New("matrix: NaN or Inf value")

	// ErrNegativeValue is returned when an expression value is below zero.
	ErrNegativeValue = errors.New("matrix: negative value")

	// ErrDuplicateSample is returned when two columns share an identifier.
	ErrDuplicateSample = errors.New("matrix: duplicate sample identifier")

	// ErrUnknownGene is returned by RowByID when no row carries the identifier.
	ErrUnknownGene = errors.New("matrix: unknown gene identifier")
)

// ConfigurationError describes a column range that could not be resolved.
//
// It matches ErrConfiguration via errors.Is.
type ConfigurationError struct {
	Start  string
	End    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("matrix: invalid column range %q..%q: %s", e.Start, e.End, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// IndexError describes a row index outside the matrix bounds.
//
// It matches ErrIndexOutOfRange via errors.Is.
type IndexError struct {
	Index int
	Rows  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("matrix: row index %d out of range [0,%d)", e.Index, e.Rows)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
