// sidecar.go -- durable form of an Index, so a caller holding a huge
// archive can build the path lookup once and reopen it cheaply next
// time instead of rescanning every entry.
//
// Adapted from the teacher's DBWriter/DBReader: same general shape
// (fixed header, a series of checksummed records, an offset table,
// an overall strong checksum) but built on
// io.Writer/io.ReaderAt instead of an mmap'd os.File -- a sidecar is
// small relative to the archives it indexes, so there's no call for
// the teacher's page-aligned mmap trick here. The hash table itself is
// not stored; Open rebuilds it from the keys in the offset table.
//
// File layout, all multi-byte integers big-endian except where noted:
//
//	 0  4  magic "HIDX"
//	 4  4  flags (reserved, zero)
//	 8  8  hseed    fasthash seed used for every path in this index
//	16  8  salt     siphash key for the per-record checksum
//	24  8  nkeys    number of entries
//	32  8  offtbl   file offset of the offset table
//	40 24  reserved
//
//	-- one record per entry, in Index.slots order:
//	 8  siphash-2-4 checksum of (record offset || record body)
//	 2  path length P (u16)
//	 P  path bytes
//	 8  entry offset within the source archive
//	 8  entry length
//	 1  directory flag
//
//	-- offset table, one (offset, hash) pair per entry, little-endian:
//	16  offset (8) + hash key (8)
//
//	32  SHA512/256 over everything from the header through the offset
//	    table
package index

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dchest/siphash"

	"github.com/acridotheres/hssp2"
)

const (
	sidecarMagic      = "HIDX"
	sidecarHeaderSize = 64
	sidecarTrailer    = 32
)

// Persist serializes ix to w as a sidecar blob.
func Persist(ix *Index, w io.Writer) error {
	salt := randbytes(8)

	h := sha512.New512_256()
	tee := io.MultiWriter(w, h)

	// The table has more slots than entries; only occupied slots are
	// written out.
	var used []slot
	for _, s := range ix.slots {
		if s != (slot{}) {
			used = append(used, s)
		}
	}

	// Every record's length is known upfront (checksum + pathlen +
	// path + offset + length + directory flag), so the offset table's
	// position can be computed before the header is written -- no
	// need for the teacher's page-alignment trick or a patch pass.
	offtbl := uint64(sidecarHeaderSize)
	for _, s := range used {
		offtbl += 8 + 2 + uint64(len(s.path)) + 8 + 8 + 1
	}

	var hdr [sidecarHeaderSize]byte
	copy(hdr[:4], sidecarMagic)
	be := binary.BigEndian
	be.PutUint64(hdr[8:16], ix.hseed)
	copy(hdr[16:24], salt)
	be.PutUint64(hdr[24:32], uint64(len(used)))
	be.PutUint64(hdr[32:40], offtbl)

	if _, err := tee.Write(hdr[:]); err != nil {
		return err
	}

	off := uint64(sidecarHeaderSize)
	offsets := make([]uint64, 2*len(used))

	for i, s := range used {
		recOff := off
		n, err := writeRecord(tee, salt, recOff, s)
		if err != nil {
			return err
		}
		off += uint64(n)

		offsets[2*i] = recOff
		offsets[2*i+1] = s.key
	}

	if err := binary.Write(tee, binary.LittleEndian, offsets); err != nil {
		return err
	}

	sum := h.Sum(nil)
	_, err := w.Write(sum)
	return err
}

func writeRecord(w io.Writer, salt []byte, recOff uint64, s slot) (int, error) {
	body := make([]byte, 2+len(s.path)+8+8+1)
	binary.BigEndian.PutUint16(body[0:2], uint16(len(s.path)))
	copy(body[2:2+len(s.path)], s.path)
	pos := 2 + len(s.path)
	binary.BigEndian.PutUint64(body[pos:pos+8], s.file.Offset)
	binary.BigEndian.PutUint64(body[pos+8:pos+16], s.file.Length)
	dir := byte(0)
	if s.file.Directory {
		dir = 1
	}
	body[pos+16] = dir

	var recOffBytes [8]byte
	binary.BigEndian.PutUint64(recOffBytes[:], recOff)

	hh := siphash.New(salt)
	hh.Write(recOffBytes[:])
	hh.Write(body)
	var cksum [8]byte
	binary.BigEndian.PutUint64(cksum[:], hh.Sum64())

	if _, err := w.Write(cksum[:]); err != nil {
		return 0, err
	}
	if _, err := w.Write(body); err != nil {
		return 0, err
	}
	return 8 + len(body), nil
}

// Open reads a sidecar blob back into a queryable Index. It verifies
// the overall checksum before trusting any record.
func Open(r io.ReaderAt, size int64) (*Index, error) {
	if size < sidecarHeaderSize+sidecarTrailer {
		return nil, ErrCorrupt
	}

	hdr := make([]byte, sidecarHeaderSize)
	if _, err := r.ReadAt(hdr, 0); err != nil {
		return nil, err
	}
	if string(hdr[:4]) != sidecarMagic {
		return nil, ErrBadMagic
	}

	be := binary.BigEndian
	hseed := be.Uint64(hdr[8:16])
	salt := append([]byte{}, hdr[16:24]...)
	nkeys := be.Uint64(hdr[24:32])
	offtbl := be.Uint64(hdr[32:40])

	if offtbl < sidecarHeaderSize || offtbl >= uint64(size)-sidecarTrailer {
		return nil, ErrCorrupt
	}

	remsz := size - int64(offtbl) - sidecarTrailer
	sr := io.NewSectionReader(r, int64(offtbl), remsz)
	h := sha512.New512_256()
	hdrSection := io.NewSectionReader(r, 0, int64(offtbl))
	if _, err := io.Copy(h, hdrSection); err != nil {
		return nil, err
	}
	if _, err := io.Copy(h, sr); err != nil {
		return nil, err
	}

	expSum := make([]byte, sidecarTrailer)
	if _, err := r.ReadAt(expSum, size-sidecarTrailer); err != nil {
		return nil, err
	}
	sum := h.Sum(nil)
	if subtle.ConstantTimeCompare(sum, expSum) != 1 {
		return nil, ErrCorrupt
	}

	offsetBytes := make([]byte, nkeys*16)
	if _, err := r.ReadAt(offsetBytes, int64(offtbl)); err != nil {
		return nil, err
	}

	slots := make([]slot, nkeys)
	keys := make([]uint64, nkeys)
	builder := newPHFBuilder()
	for i := uint64(0); i < nkeys; i++ {
		recOff := binary.LittleEndian.Uint64(offsetBytes[i*16 : i*16+8])
		key := binary.LittleEndian.Uint64(offsetBytes[i*16+8 : i*16+16])

		s, err := readRecord(r, salt, recOff)
		if err != nil {
			return nil, fmt.Errorf("index: record %d: %w", i, err)
		}
		s.key = key

		keys[i] = key
		slots[i] = s
		if err := builder.add(key); err != nil {
			return nil, err
		}
	}

	table, err := builder.freeze(0.9)
	if err != nil {
		return nil, err
	}

	reordered := make([]slot, table.len())
	for i, k := range keys {
		j := table.find(k)
		reordered[j] = slots[i]
	}

	return &Index{table: table, hseed: hseed, slots: reordered}, nil
}

func readRecord(r io.ReaderAt, salt []byte, off uint64) (slot, error) {
	var cksum [8]byte
	if _, err := r.ReadAt(cksum[:], int64(off)); err != nil {
		return slot{}, err
	}

	var pathLenBytes [2]byte
	if _, err := r.ReadAt(pathLenBytes[:], int64(off)+8); err != nil {
		return slot{}, err
	}
	pathLen := binary.BigEndian.Uint16(pathLenBytes[:])

	bodyLen := 2 + int(pathLen) + 8 + 8 + 1
	body := make([]byte, bodyLen)
	if _, err := r.ReadAt(body, int64(off)+8); err != nil {
		return slot{}, err
	}

	var recOffBytes [8]byte
	binary.BigEndian.PutUint64(recOffBytes[:], off)
	hh := siphash.New(salt)
	hh.Write(recOffBytes[:])
	hh.Write(body)
	if binary.BigEndian.Uint64(cksum[:]) != hh.Sum64() {
		return slot{}, ErrCorrupt
	}

	path := string(body[2 : 2+pathLen])
	pos := 2 + int(pathLen)
	entryOff := binary.BigEndian.Uint64(body[pos : pos+8])
	entryLen := binary.BigEndian.Uint64(body[pos+8 : pos+16])
	directory := body[pos+16] != 0

	return slot{
		path: path,
		file: hssp.File{
			Path:      path,
			Directory: directory,
			Offset:    entryOff,
			Length:    entryLen,
		},
	}, nil
}
