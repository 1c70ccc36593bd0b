// integrity.go -- the body checksum: seeded MurmurHash3-32 over a
// positioned byte range, computed over whatever bytes are actually
// stored (ciphertext, if the archive is encrypted).
package hssp

import (
	"io"

	"github.com/spaolacci/murmur3"
)

// hashRange computes the seeded MurmurHash3-32 of [offset, offset+length)
// in r, restoring r's position to whatever it was when called.
func hashRange(r io.ReadSeeker, offset, length int64) (uint32, error) {
	posBefore, err := pos(r)
	if err != nil {
		return 0, err
	}

	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}

	h := murmur3.New32WithSeed(murmurSeed)
	if _, err := io.CopyN(h, r, length); err != nil {
		return 0, err
	}

	if _, err := r.Seek(posBefore, io.SeekStart); err != nil {
		return 0, err
	}

	return h.Sum32(), nil
}

// VerifyIntegrity recomputes the MurmurHash3-32 checksum over the
// archive's stored body range and compares it against meta.Checksum.
// It does not distinguish a corrupt body from a tampered one -- that
// policy decision is left to the caller, per the container's failure
// semantics: a checksum mismatch is never a hard error here.
func VerifyIntegrity(r io.ReadSeeker, meta *Metadata) (bool, error) {
	hdr := headerSize(meta.Version)
	total, err := size(r)
	if err != nil {
		return false, err
	}

	computed, err := hashRange(r, hdr, total-hdr)
	if err != nil {
		return false, err
	}

	return computed == meta.Checksum, nil
}
