// create_test.go -- round-trip and golden-vector tests for the
// writer/reader pair, mirroring original_source/tests/wfld.rs.
package hssp

import (
	"bytes"
	"strings"
	"testing"
)

func buildSource(payload string) *MemBuffer {
	mb := NewMemBuffer()
	mb.WriteAt([]byte(payload), 0)
	return mb
}

func mustCreate(t *testing.T, version uint8, entries []SourceEntry, enc *EncryptionParams, mainFile *uint32) *MemBuffer {
	t.Helper()
	sink := NewMemBuffer()
	patch, err := Create(version, entries, enc, mainFile, sink, 1024)
	if err != nil {
		t.Fatalf("create: %s", err)
	}
	if err := WriteHash(sink, patch); err != nil {
		t.Fatalf("write hash: %s", err)
	}
	return sink
}

func TestCreateSingleEntry(t *testing.T) {
	assert := newAsserter(t)

	src := buildSource("Hello, world!")
	entries := []SourceEntry{
		{Path: "test.txt", Length: 13, Source: src},
	}

	sink := mustCreate(t, 1, entries, nil, nil)

	meta, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata: %s", err)

	ok, err := VerifyIntegrity(sink, meta)
	assert(err == nil, "verify: %s", err)
	assert(ok, "checksum should verify")

	assert(meta.Version == 1, "version: exp 1, saw %d", meta.Version)
	assert(meta.Checksum == 2082363140, "checksum: exp 2082363140, saw %d", meta.Checksum)
	assert(meta.Encryption == nil, "should not be encrypted")
	assert(len(meta.Files) == 1, "exp 1 file, saw %d", len(meta.Files))
	assert(meta.Files[0].Path == "test.txt", "path: %s", meta.Files[0].Path)
	assert(!meta.Files[0].Directory, "should not be a directory")
	assert(meta.Files[0].Offset == 82, "offset: exp 82, saw %d", meta.Files[0].Offset)
	assert(meta.Files[0].Length == 13, "length: exp 13, saw %d", meta.Files[0].Length)
	assert(meta.MainFile == nil, "main file should be unset")

	out := NewMemBuffer()
	err = Extract(sink, &meta.Files[0], out, 1024, 0)
	assert(err == nil, "extract: %s", err)
	assert(string(out.Bytes()) == "Hello, world!", "payload mismatch: %q", out.Bytes())
}

func TestCreateTwoEntries(t *testing.T) {
	assert := newAsserter(t)

	src1 := buildSource("Hello, world!")
	src2 := buildSource("Hello, world! 2")
	entries := []SourceEntry{
		{Path: "test.txt", Length: 13, Source: src1},
		{Path: "test2.txt", Length: 15, Source: src2},
	}

	sink := mustCreate(t, 1, entries, nil, nil)

	meta, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata: %s", err)

	ok, err := VerifyIntegrity(sink, meta)
	assert(err == nil && ok, "verify failed: %v %s", ok, err)

	assert(meta.Checksum == 183707333, "checksum: exp 183707333, saw %d", meta.Checksum)
	assert(len(meta.Files) == 2, "exp 2 files, saw %d", len(meta.Files))
	assert(meta.Files[0].Offset == 82, "file0 offset: exp 82, saw %d", meta.Files[0].Offset)
	assert(meta.Files[1].Offset == 122, "file1 offset: exp 122, saw %d", meta.Files[1].Offset)
	assert(meta.Files[1].Length == 15, "file1 length: exp 15, saw %d", meta.Files[1].Length)
}

func TestCreateDirectoryEntry(t *testing.T) {
	assert := newAsserter(t)

	src := buildSource("Hello, world!")
	entries := []SourceEntry{
		{Path: "test", Directory: true},
		{Path: "test/test.txt", Length: 13, Source: src},
	}

	sink := mustCreate(t, 1, entries, nil, nil)

	meta, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata: %s", err)

	assert(meta.Checksum == 2567700355, "checksum: exp 2567700355, saw %d", meta.Checksum)
	assert(len(meta.Files) == 2, "exp 2 files, saw %d", len(meta.Files))

	assert(meta.Files[0].Path == "test", "dir path: %s", meta.Files[0].Path)
	assert(meta.Files[0].Directory, "should be a directory")
	assert(meta.Files[0].Offset == 80, "dir offset: exp 80, saw %d", meta.Files[0].Offset)
	assert(meta.Files[0].Length == 0, "dir length: exp 0, saw %d", meta.Files[0].Length)

	assert(meta.Files[1].Offset == 109, "file offset: exp 109, saw %d", meta.Files[1].Offset)
	assert(meta.Files[1].Length == 13, "file length: exp 13, saw %d", meta.Files[1].Length)

	out := NewMemBuffer()
	err = Extract(sink, &meta.Files[1], out, 1024, 0)
	assert(err == nil, "extract: %s", err)
	assert(string(out.Bytes()) == "Hello, world!", "payload mismatch")
}

func TestCreateWithMainFile(t *testing.T) {
	assert := newAsserter(t)

	src := buildSource("Hello, world!")
	entries := []SourceEntry{
		{Path: "test.txt", Length: 13, Source: src},
	}
	main := uint32(0)

	sink := mustCreate(t, 1, entries, nil, &main)

	meta, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata: %s", err)
	assert(meta.MainFile != nil && *meta.MainFile == 0, "main file should be 0, saw %v", meta.MainFile)
}

func TestCreateEncrypted(t *testing.T) {
	assert := newAsserter(t)

	src := buildSource("Hello, world!")
	entries := []SourceEntry{
		{Path: "test.txt", Length: 13, Source: src},
	}

	sink := mustCreate(t, 1, entries, &EncryptionParams{Password: "Password"}, nil)

	// No password: hash must read back as all-zero, no files listed.
	if _, err := sink.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	meta, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata (no password): %s", err)
	assert(meta.Encryption != nil, "expected an encryption descriptor")
	assert(meta.Encryption.Hash == [32]byte{}, "hash should be zero with no password")
	assert(len(meta.Files) == 0, "no files should be listed without a password")

	// Wrong password: hash mismatch, no files.
	if _, err := sink.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	wrong := "password"
	meta, err = ReadMetadata(sink, &wrong)
	assert(err == nil, "metadata (wrong password): %s", err)
	assert(!meta.Encryption.Matches(), "wrong password should not match")
	assert(len(meta.Files) == 0, "no files should be listed with a wrong password")

	// Correct password: decrypts, entries scanned from the plaintext body.
	if _, err := sink.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	correct := "Password"
	meta, err = ReadMetadata(sink, &correct)
	assert(err == nil, "metadata (correct password): %s", err)
	assert(meta.Encryption.Matches(), "correct password should match")
	assert(len(meta.Files) == 1, "exp 1 file, saw %d", len(meta.Files))
	assert(meta.Files[0].Offset == 18, "offset: exp 18, saw %d", meta.Files[0].Offset)
	assert(meta.Files[0].Length == 13, "length: exp 13, saw %d", meta.Files[0].Length)

	out := NewMemBuffer()
	err = Extract(bytes.NewReader(meta.Encryption.Decrypted), &meta.Files[0], out, 1024, 0)
	assert(err == nil, "extract: %s", err)
	assert(string(out.Bytes()) == "Hello, world!", "payload mismatch: %q", out.Bytes())
}

func TestVerifyIntegrityDetectsCorruption(t *testing.T) {
	assert := newAsserter(t)

	src := buildSource("Hello, world!")
	entries := []SourceEntry{
		{Path: "test.txt", Length: 13, Source: src},
	}

	sink := mustCreate(t, 1, entries, nil, nil)

	meta, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata: %s", err)

	ok, err := VerifyIntegrity(sink, meta)
	assert(err == nil && ok, "expected valid checksum before corruption")

	// Flip one byte well inside the body (past the header).
	raw := sink.Bytes()
	raw[len(raw)-1] ^= 0xFF

	ok, err = VerifyIntegrity(sink, meta)
	assert(err == nil, "verify after corruption: %s", err)
	assert(!ok, "corruption should be detected")

	// metadata still succeeds -- corruption is never a parse failure.
	meta2, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata after corruption: %s", err)
	assert(len(meta2.Files) == 1, "entries should still parse")
}

func TestRoundTripPreservesReaderPosition(t *testing.T) {
	assert := newAsserter(t)

	src := buildSource("Hello, world!")
	entries := []SourceEntry{
		{Path: "test.txt", Length: 13, Source: src},
	}
	sink := mustCreate(t, 1, entries, nil, nil)

	if _, err := sink.Seek(5, 0); err != nil {
		t.Fatal(err)
	}
	meta, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata: %s", err)

	pos1, err := sink.Seek(0, 1)
	assert(err == nil, "seek: %s", err)

	ok1, err := VerifyIntegrity(sink, meta)
	assert(err == nil && ok1, "first verify failed")

	pos2, err := sink.Seek(0, 1)
	assert(err == nil, "seek: %s", err)
	assert(pos1 == pos2, "VerifyIntegrity should restore the reader position")

	ok2, err := VerifyIntegrity(sink, meta)
	assert(err == nil && ok2 == ok1, "repeated verify should be stable")
}

func TestDirectoryPathEncoding(t *testing.T) {
	assert := newAsserter(t)

	entries := []SourceEntry{
		{Path: "sub", Directory: true},
	}
	sink := mustCreate(t, 1, entries, nil, nil)

	raw := sink.Bytes()
	// Body starts right after the 64-byte v1 header: length(8) + pathlen(2) + path.
	bodyStart := 64
	pathLen := int(raw[bodyStart+8]) | int(raw[bodyStart+9])<<8
	path := string(raw[bodyStart+10 : bodyStart+10+pathLen])
	assert(strings.HasPrefix(path, "//"), "stored directory path should be prefixed //, saw %q", path)

	meta, err := ReadMetadata(sink, nil)
	assert(err == nil, "metadata: %s", err)
	assert(meta.Files[0].Path == "sub", "parsed path should strip the // prefix, saw %q", meta.Files[0].Path)
	assert(meta.Files[0].Directory, "should be marked a directory")
	assert(meta.Files[0].Length == 0, "directory length should be 0")
}
