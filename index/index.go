// index.go -- builds and queries a constant-time path -> entry lookup
// over an already-parsed archive, using the teacher's CHD minimal
// perfect hash (chd.go) the same way its own tests turn arbitrary
// string keys into uint64s: via fasthash.Hash64.
//
// hssp.Metadata already gives O(n) linear access to every entry; Index
// trades a one-time O(n) build for O(1) lookups afterward, useful when
// a caller holds a big archive open and extracts many named entries
// from it over its lifetime.
package index

import (
	"github.com/opencoff/go-fasthash"

	"github.com/acridotheres/hssp2"
)

type slot struct {
	key  uint64
	path string
	file hssp.File
}

// Index is a frozen, constant-time path -> hssp.File lookup table.
type Index struct {
	table *phf
	hseed uint64
	slots []slot
}

// Build constructs an Index over every entry in meta. Directory
// entries are indexed the same as file entries -- callers that only
// care about extractable files should filter meta.Files themselves
// before building, or simply ignore directory hits after Lookup.
func Build(meta *hssp.Metadata) (*Index, error) {
	hseed := rand64()
	b := newPHFBuilder()

	keys := make([]uint64, len(meta.Files))
	for i, f := range meta.Files {
		h := fasthash.Hash64(hseed, []byte(f.Path))
		keys[i] = h
		if err := b.add(h); err != nil {
			return nil, err
		}
	}

	table, err := b.freeze(0.9)
	if err != nil {
		return nil, err
	}

	slots := make([]slot, table.len())
	for i, f := range meta.Files {
		s := table.find(keys[i])
		slots[s] = slot{key: keys[i], path: f.Path, file: f}
	}

	return &Index{table: table, hseed: hseed, slots: slots}, nil
}

// Lookup returns the entry stored under path, and whether it was
// found. A miss is reported both for a path never indexed and for one
// that collides with an indexed path's slot but isn't actually equal
// to it -- CHD only guarantees O(1) lookup for the original key set.
func (ix *Index) Lookup(path string) (hssp.File, bool) {
	h := fasthash.Hash64(ix.hseed, []byte(path))
	i := ix.table.find(h)
	if int(i) >= len(ix.slots) {
		return hssp.File{}, false
	}
	s := ix.slots[i]
	if s.key != h || s.path != path {
		return hssp.File{}, false
	}
	return s.file, true
}

// Len returns the number of entries the index was built over.
func (ix *Index) Len() int {
	n := 0
	for _, s := range ix.slots {
		if s != (slot{}) {
			n++
		}
	}
	return n
}
