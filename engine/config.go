package engine

import (
	"fmt"

	"github.com/hupe1980/dirt/dispersion"
	"github.com/hupe1980/dirt/selector"
)

// Config controls how a run is partitioned and ranked.
type Config struct {
	// TopN is the number of candidates per target. If 0, defaults to
	// selector.DefaultTopN.
	TopN int

	// Epsilon is the ratio denominator guard. If 0, defaults to
	// dispersion.Epsilon.
	Epsilon float64

	// Blocks is the number of blocks targets are split into. If 0, defaults
	// to 2. Ignored when BlockSize is set.
	Blocks int

	// BlockSize, if > 0, splits targets into blocks of at most this many
	// targets instead of a fixed block count.
	BlockSize int
}

// DefaultConfig returns the reference configuration: ten candidates per
// target, the default epsilon, and two blocks.
func DefaultConfig() Config {
	return Config{
		TopN:    selector.DefaultTopN,
		Epsilon: dispersion.Epsilon,
		Blocks:  2,
	}
}

// Validate reports invalid values.
func (c Config) Validate() error {
	if c.TopN < 0 {
		return fmt.Errorf("%w: top-n %d", ErrInvalidArgument, c.TopN)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("%w: epsilon %g", ErrInvalidArgument, c.Epsilon)
	}
	if c.Blocks < 0 {
		return fmt.Errorf("%w: blocks %d", ErrInvalidArgument, c.Blocks)
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("%w: block size %d", ErrInvalidArgument, c.BlockSize)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.TopN == 0 {
		c.TopN = selector.DefaultTopN
	}
	if c.Epsilon == 0 {
		c.Epsilon = dispersion.Epsilon
	}
	if c.Blocks == 0 {
		c.Blocks = 2
	}
	return c
}
