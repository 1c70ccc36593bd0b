// errors.go -- sentinel errors for the hssp package
package hssp

import "errors"

var (
	// ErrBadMagic is returned when the first 4 bytes of a stream
	// don't match either "SFA\0" or "HSSP".
	ErrBadMagic = errors.New("hssp2: bad magic bytes")

	// ErrTruncated is returned when a header or entry record runs
	// past the end of the stream.
	ErrTruncated = errors.New("hssp2: truncated archive")

	// ErrInvalidPath is returned when an entry's path bytes are not
	// valid UTF-8.
	ErrInvalidPath = errors.New("hssp2: invalid UTF-8 in entry path")

	// ErrNoSuchEntry is returned by Metadata.Find when a path isn't
	// present in the archive's entry table.
	ErrNoSuchEntry = errors.New("hssp2: no such entry")

	// ErrUndecrypted is returned by Metadata.Source when the archive
	// is encrypted but Metadata carries no decrypted body (missing or
	// wrong password).
	ErrUndecrypted = errors.New("hssp2: archive body was not decrypted")

	// ErrBadCiphertext is returned when an encrypted body's length
	// isn't a multiple of the AES block size.
	ErrBadCiphertext = errors.New("hssp2: ciphertext is not block-aligned")

	// ErrEntryTooLarge is returned when Create is given an entry
	// whose path is too long to encode in a 16-bit length prefix.
	ErrEntryTooLarge = errors.New("hssp2: entry path exceeds 65535 bytes")
)
