// extract.go -- copies one entry's payload out of a parsed archive.
package hssp

import (
	"bytes"
	"io"
)

// Find returns the entry at path, or ErrNoSuchEntry if none matches.
func (m *Metadata) Find(path string) (*File, error) {
	for i := range m.Files {
		if m.Files[i].Path == path {
			return &m.Files[i], nil
		}
	}
	return nil, ErrNoSuchEntry
}

// Source returns the reader Extract should read entry payloads from:
// the archive stream itself for a plaintext archive, or a reader over
// the decrypted body for an encrypted one. It returns ErrUndecrypted
// if the archive is encrypted but no correct password was supplied to
// ReadMetadata, since there is then no decrypted body to read from.
func (m *Metadata) Source(archive io.ReaderAt) (io.ReaderAt, error) {
	if m.Encryption == nil {
		return archive, nil
	}
	if !m.Encryption.Matches() {
		return nil, ErrUndecrypted
	}
	return bytes.NewReader(m.Encryption.Decrypted), nil
}

// Extract copies file.Length bytes starting at file.Offset in source
// into sink starting at sinkPos, in bufferSize-sized chunks. For a
// plaintext archive, source is the same reader Metadata was read
// from; for an encrypted one, source is a reader over
// Metadata.Encryption.Decrypted (e.g. bytes.NewReader).
func Extract(source io.ReaderAt, file *File, sink io.WriterAt, bufferSize int, sinkPos int64) error {
	if bufferSize <= 0 {
		bufferSize = 64 * 1024
	}

	buf := make([]byte, bufferSize)
	remaining := int64(file.Length)
	srcOff := int64(file.Offset)
	dstOff := sinkPos

	for remaining > 0 {
		chunk := int64(len(buf))
		if chunk > remaining {
			chunk = remaining
		}

		n, err := source.ReadAt(buf[:chunk], srcOff)
		if n > 0 {
			if _, werr := sink.WriteAt(buf[:n], dstOff); werr != nil {
				return werr
			}
			srcOff += int64(n)
			dstOff += int64(n)
			remaining -= int64(n)
		}
		if err != nil {
			if err == io.EOF && remaining == 0 {
				break
			}
			return err
		}
	}

	return nil
}
