// hssp.go -- container format for the HSSP/SFA archive family
//
// Package hssp reads and writes HSSP archives (and their historical
// SFA variant): a versioned container that bundles an ordered list of
// file entries -- each a path, a directory flag and a contiguous byte
// payload -- into a single sequential byte stream, with an optional
// whole-body AES-256-CBC encryption envelope and a MurmurHash3-32
// integrity checksum over the stored body.
//
// (c) Acridotheres 2024
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim is made to its
// suitability for any purpose.
package hssp

const (
	// murmurSeed is the constant seed used for the body integrity checksum.
	murmurSeed uint32 = 0x31082007

	magicSFA  = "SFA\x00"
	magicHSSP = "HSSP"

	headerBaseSize = 64 // magic, checksum, count, key-hash+iv, main-file
	reservedSize   = 64 // v3-only reserved block
)

// File describes one entry inside an archive: a path, a directory
// flag and the location of its payload within the body as seen after
// any decryption (i.e. absolute stream offset for a plaintext archive,
// or offset into the decrypted body vector for an encrypted one).
type File struct {
	Path      string
	Directory bool
	Offset    uint64
	Length    uint64
}

// Encryption describes the encryption envelope of an archive as found
// (or attempted) during a ReadMetadata call.
type Encryption struct {
	// Hash is the double-SHA256 of the password actually supplied,
	// recomputed from it. All-zero if no password was supplied.
	Hash [32]byte

	// HashExpected is the double-SHA256 stored in the header.
	HashExpected [32]byte

	// IV is the 16-byte AES-CBC initialization vector stored in the header.
	IV [16]byte

	// Decrypted holds the whole plaintext body once a correct
	// password has been supplied; empty otherwise. It is owned
	// exclusively by the Metadata that holds it.
	Decrypted []byte
}

// Matches reports whether the recomputed key-hash equals the one
// stored in the header, i.e. whether the supplied password was
// correct.
func (e *Encryption) Matches() bool {
	return e.Hash == e.HashExpected
}

// Metadata is a parsed archive header plus its entry table.
type Metadata struct {
	Version    uint8
	Checksum   uint32
	Encryption *Encryption
	Files      []File

	// MainFile is a 0-based index into Files designating the
	// archive's primary payload, or nil if none was set.
	MainFile *uint32
}

// headerSize returns the on-disk header size for a given version:
// 64 bytes for v1/v2, 128 bytes for v3.
func headerSize(version uint8) int64 {
	if version > 2 {
		return headerBaseSize + reservedSize
	}
	return headerBaseSize
}
