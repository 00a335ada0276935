package targets

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/dirt/matrix"
)

// ErrInvalidSpec is returned for malformed target expressions.
var ErrInvalidSpec = errors.New("targets: invalid target expression")

// Set is an ordered set of target row indices.
type Set struct {
	rb *roaring.Bitmap
}

// New creates an empty set.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Of creates a set holding the given indices.
func Of(indices ...int) *Set {
	s := New()
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

// Range returns the set [lo, hi).
func Range(lo, hi int) *Set {
	s := New()
	if hi > lo && lo >= 0 {
		s.rb.AddRange(uint64(lo), uint64(hi))
	}
	return s
}

// All returns [0, rows).
func All(rows int) *Set {
	return Range(0, rows)
}

// Parse parses a comma separated list of indices and ranges.
//
//	"7"        single row
//	"0-4999"   inclusive range
//	"0:5000"   half-open range
//	"*"        every row (requires rows > 0)
func Parse(expr string, rows int) (*Set, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "*" {
		if rows <= 0 {
			return nil, fmt.Errorf("%w: %q needs a row count", ErrInvalidSpec, expr)
		}
		return All(rows), nil
	}

	s := New()
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty element in %q", ErrInvalidSpec, expr)
		}

		lo, hi, err := parsePart(part)
		if err != nil {
			return nil, err
		}
		s.rb.AddRange(uint64(lo), uint64(hi))
	}
	return s, nil
}

// parsePart returns the half-open range described by part.
func parsePart(part string) (int, int, error) {
	if a, b, ok := strings.Cut(part, ":"); ok {
		lo, hi, err := parseBounds(part, a, b)
		if err != nil {
			return 0, 0, err
		}
		if hi <= lo {
			return 0, 0, fmt.Errorf("%w: empty range %q", ErrInvalidSpec, part)
		}
		return lo, hi, nil
	}
	if a, b, ok := strings.Cut(part, "-"); ok {
		lo, hi, err := parseBounds(part, a, b)
		if err != nil {
			return 0, 0, err
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("%w: reversed range %q", ErrInvalidSpec, part)
		}
		return lo, hi + 1, nil
	}
	v, err := parseIndex(part, part)
	if err != nil {
		return 0, 0, err
	}
	return v, v + 1, nil
}

func parseBounds(part, a, b string) (int, int, error) {
	lo, err := parseIndex(part, a)
	if err != nil {
		return 0, 0, err
	}
	hi, err := parseIndex(part, b)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func parseIndex(part, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 || v > roaringMax {
		return 0, fmt.Errorf("%w: bad index in %q", ErrInvalidSpec, part)
	}
	return v, nil
}

// roaringMax is the largest row index a 32-bit bitmap can hold.
const roaringMax = 1<<32 - 2

// Add adds row i. Negative indices are ignored.
func (s *Set) Add(i int) {
	if i >= 0 {
		s.rb.Add(uint32(i))
	}
}

// Contains reports whether row i is in the set.
func (s *Set) Contains(i int) bool {
	return i >= 0 && s.rb.Contains(uint32(i))
}

// Len returns the number of targets.
func (s *Set) Len() int {
	return int(s.rb.GetCardinality())
}

// IsEmpty reports whether the set has no targets.
func (s *Set) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Min returns the smallest target. It panics on an empty set.
func (s *Set) Min() int { return int(s.rb.Minimum()) }

// Max returns the largest target. It panics on an empty set.
func (s *Set) Max() int { return int(s.rb.Maximum()) }

// Indices returns the targets in ascending order.
func (s *Set) Indices() []int {
	out := make([]int, 0, s.Len())
	it := s.rb.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Validate reports the first target outside [0, rows) as *matrix.IndexError.
func (s *Set) Validate(rows int) error {
	if s.IsEmpty() {
		return nil
	}
	if hi := s.Max(); hi >= rows {
		return &matrix.IndexError{Index: hi, Rows: rows}
	}
	return nil
}

// Clip returns the targets in [0, rows).
func (s *Set) Clip(rows int) *Set {
	out := &Set{rb: s.rb.Clone()}
	if rows <= 0 {
		out.rb.Clear()
		return out
	}
	out.rb.RemoveRange(uint64(rows), uint64(roaringMax)+1)
	return out
}

// String renders the set as a compact range expression, e.g. "0-4,9".
func (s *Set) String() string {
	var b strings.Builder
	idx := s.Indices()
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && idx[j+1] == idx[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		if j == i {
			b.WriteString(strconv.Itoa(idx[i]))
		} else {
			fmt.Fprintf(&b, "%d-%d", idx[i], idx[j])
		}
		i = j + 1
	}
	return b.String()
}
