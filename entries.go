// entries.go -- per-entry record layout.
//
// Each entry, repeated file-count times within the body:
//
//	8  payload length L (u64 LE)
//	2  path byte length P (u16 LE)
//	P  path bytes (UTF-8); a directory entry's path is prefixed "//"
//	L  payload bytes
//	P  trailing zero pad
package hssp

import (
	"io"
	"strings"
)

// readEntry reads one entry record from r, which must currently be
// positioned at the start of the record. end is the absolute size of
// the stream r is drawn from, used to reject a record whose payload
// would run past it instead of silently seeking beyond end-of-stream.
func readEntry(r io.ReadSeeker, end int64) (File, error) {
	length, err := readU64LE(r)
	if err != nil {
		return File{}, err
	}
	pathLen, err := readU16LE(r)
	if err != nil {
		return File{}, err
	}
	path, err := readUTF8(r, int(pathLen))
	if err != nil {
		return File{}, err
	}

	directory := strings.HasPrefix(path, "//")
	if directory {
		path = strings.TrimPrefix(path, "//")
	}

	offset, err := pos(r)
	if err != nil {
		return File{}, err
	}

	skip := int64(length) + int64(pathLen)
	if offset+skip > end {
		return File{}, ErrTruncated
	}
	if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
		return File{}, err
	}

	return File{
		Path:      path,
		Directory: directory,
		Offset:    uint64(offset),
		Length:    length,
	}, nil
}

// writeEntry writes one entry's record and payload into w. source may
// be nil when length is zero (directory markers carry no payload).
func writeEntry(w io.Writer, e SourceEntry, bufferSize int) error {
	path := e.Path
	if e.Directory {
		path = "//" + path
	}
	if len(path) > 0xFFFF {
		return ErrEntryTooLarge
	}

	if err := writeU64LE(w, e.Length); err != nil {
		return err
	}
	if err := writeU16LE(w, uint16(len(path))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, path); err != nil {
		return err
	}

	if e.Length > 0 {
		if err := copyFromReaderAt(w, e.Source, int64(e.Offset), int64(e.Length), bufferSize); err != nil {
			return err
		}
	}

	pad := make([]byte, len(path))
	_, err := w.Write(pad)
	return err
}
