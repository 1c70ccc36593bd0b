package index

import (
	"bytes"
	"testing"
)

func TestPersistAndOpenRoundTrip(t *testing.T) {
	assert := newAsserter(t)

	meta := buildMeta()
	ix, err := Build(meta)
	assert(err == nil, "build: %s", err)

	var buf bytes.Buffer
	err = Persist(ix, &buf)
	assert(err == nil, "persist: %s", err)

	reopened, err := Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	assert(err == nil, "open: %s", err)
	assert(reopened.Len() == ix.Len(), "slot count mismatch: exp %d, saw %d", ix.Len(), reopened.Len())

	for _, f := range meta.Files {
		got, ok := reopened.Lookup(f.Path)
		assert(ok, "lookup miss for %q after reopen", f.Path)
		assert(got.Offset == f.Offset, "offset mismatch for %q", f.Path)
		assert(got.Length == f.Length, "length mismatch for %q", f.Path)
	}
}

func TestOpenRejectsCorruption(t *testing.T) {
	assert := newAsserter(t)

	meta := buildMeta()
	ix, err := Build(meta)
	assert(err == nil, "build: %s", err)

	var buf bytes.Buffer
	err = Persist(ix, &buf)
	assert(err == nil, "persist: %s", err)

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	_, err = Open(bytes.NewReader(raw), int64(len(raw)))
	assert(err == ErrCorrupt, "expected ErrCorrupt, saw %v", err)
}

func TestOpenRejectsBadMagic(t *testing.T) {
	assert := newAsserter(t)

	raw := make([]byte, sidecarHeaderSize+sidecarTrailer)
	copy(raw[:4], "NOPE")

	_, err := Open(bytes.NewReader(raw), int64(len(raw)))
	assert(err == ErrBadMagic, "expected ErrBadMagic, saw %v", err)
}
