package dirt

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dirt/engine"
	"github.com/hupe1980/dirt/matrix"
	"github.com/hupe1980/dirt/selector"
)

var (
	// ErrConfiguration is returned when a sample range cannot be resolved
	// against the matrix. Use errors.As with *matrix.ConfigurationError for
	// the offending range.
	ErrConfiguration = matrix.ErrConfiguration

	// ErrIndexOutOfRange is returned when a target index is outside the
	// matrix. Use errors.As with *matrix.IndexError for details.
	ErrIndexOutOfRange = matrix.ErrIndexOutOfRange

	// ErrInvalidTopN is returned when the candidate count is not positive.
	ErrInvalidTopN = errors.New("top-n must be positive")

	// ErrNoTargets is returned when a run is started without targets.
	ErrNoTargets = errors.New("no targets")

	// ErrInvalidArgument is returned for other invalid settings.
	ErrInvalidArgument = errors.New("invalid argument")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Matrix errors already carry the shared sentinels.
	if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrIndexOutOfRange) {
		return err
	}

	if errors.Is(err, selector.ErrInvalidTopN) {
		return fmt.Errorf("%w: %w", ErrInvalidTopN, err)
	}
	if errors.Is(err, engine.ErrNoTargets) {
		return fmt.Errorf("%w: %w", ErrNoTargets, err)
	}
	if errors.Is(err, engine.ErrInvalidArgument) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
