package manifest

import "errors"

var (
	// ErrIncompatibleVersion is returned when the manifest version is not supported.
	ErrIncompatibleVersion = errors.New("manifest: incompatible version")

	// ErrNotFound is returned when no manifest has been committed.
	ErrNotFound = errors.New("manifest: not found")

	// ErrChecksumMismatch is returned when a block's content does not match
	// the recorded CRC32C.
	ErrChecksumMismatch = errors.New("manifest: block checksum mismatch")

	// ErrHeaderMismatch is returned when a block's header differs from the
	// first block's header.
	ErrHeaderMismatch = errors.New("manifest: block header mismatch")
)
