// rand.go -- random salt/seed generation for the CHD builder and the
// sidecar's per-record checksum key.
//
// (c) Sudhi Herle 2018
package index

import (
	"crypto/rand"
	"encoding/binary"
	"io"
)

func randbytes(n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic("index: can't read crypto/rand")
	}
	return b
}

func rand64() uint64 {
	var b [8]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic("index: can't read crypto/rand")
	}
	return binary.BigEndian.Uint64(b[:])
}
