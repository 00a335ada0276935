package engine

import "errors"

var (
	// ErrInvalidArgument is returned when a Config value is invalid.
	ErrInvalidArgument = errors.New("engine: invalid argument")

	// ErrNoTargets is returned when a run is started with an empty target set.
	ErrNoTargets = errors.New("engine: no targets")
)
