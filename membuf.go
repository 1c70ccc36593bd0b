// membuf.go -- an in-memory io.ReadWriteSeeker/io.ReaderAt/io.WriterAt.
//
// Create needs to read the body back from its sink after writing it
// (see Create's doc comment); when the caller doesn't already have a
// seekable sink -- building an archive purely in memory, as this
// package's tests do -- MemBuffer fills
// that role, the same part dh::data::rw_empty() plays in the source
// implementation's own tests.
package hssp

import (
	"io"
)

// MemBuffer is a growable in-memory buffer that supports positioned
// reads, positioned writes, and a single shared seek cursor for
// sequential io.Reader/io.Writer use.
type MemBuffer struct {
	buf    []byte
	cursor int64
}

// NewMemBuffer returns an empty MemBuffer.
func NewMemBuffer() *MemBuffer {
	return &MemBuffer{}
}

// Bytes returns the buffer's current contents. The returned slice
// aliases the buffer, so writes through it change the buffer itself.
func (m *MemBuffer) Bytes() []byte {
	return m.buf
}

func (m *MemBuffer) Read(p []byte) (int, error) {
	n, err := m.ReadAt(p, m.cursor)
	m.cursor += int64(n)
	return n, err
}

func (m *MemBuffer) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemBuffer) Write(p []byte) (int, error) {
	n, err := m.WriteAt(p, m.cursor)
	m.cursor += int64(n)
	return n, err
}

func (m *MemBuffer) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[off:end], p)
	return len(p), nil
}

func (m *MemBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = m.cursor
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, io.ErrUnexpectedEOF
	}

	newPos := base + offset
	if newPos < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	m.cursor = newPos
	return newPos, nil
}
