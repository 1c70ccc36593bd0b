package index

import "errors"

var (
	// ErrCorrupt is returned when a sidecar's checksum doesn't match
	// its contents.
	ErrCorrupt = errors.New("index: corrupt sidecar")

	// ErrBadMagic is returned when a sidecar's file header doesn't
	// carry the expected magic.
	ErrBadMagic = errors.New("index: bad sidecar magic")
)
