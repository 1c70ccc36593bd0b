// chd.go -- constant-time minimal perfect hashing for archive paths.
//
// This is an implementation of CHD in http://cmph.sourceforge.net/papers/esa09.pdf,
// adapted from the teacher's general-purpose uint64-keyed builder into a
// path-keyed lookup used to accelerate hssp.Metadata entry access. The
// teacher's version targets static databases with potentially millions
// of keys, so it packs the seed table into the narrowest of u8/u16/u32
// and can (de)serialize it directly into an mmap'd region. An archive's
// path count tops out in the thousands, not millions, and sidecar.go
// rebuilds the table from its offset table on every Open rather than
// deserializing a stored one (see sidecar.go's Open) -- so none of that
// packing or marshaling earns its keep here. What's kept is the actual
// CHD construction: bucket the keys by a first-level hash, then search
// each bucket (largest first) for a per-bucket seed that displaces its
// keys into unused slots.
//
// (c) Sudhi Herle 2018 -- original CHD construction.
package index

import (
	"fmt"
	"sort"
)

// number of times we will try to build the table for a single bucket
// before giving up.
const maxSeed uint32 = 65536 * 2

// phfBuilder accumulates uint64 keys (hashed archive paths) before
// freeze produces a constant-time lookup table over them.
type phfBuilder struct {
	data map[uint64]bool
	salt uint64
}

func newPHFBuilder() *phfBuilder {
	return &phfBuilder{
		data: make(map[uint64]bool),
		salt: rand64(),
	}
}

func (c *phfBuilder) add(key uint64) error {
	if _, ok := c.data[key]; ok {
		return fmt.Errorf("index: duplicate path hash %x", key)
	}
	c.data[key] = true
	return nil
}

type bucket struct {
	slot uint64
	keys []uint64
}
type buckets []bucket

func (b buckets) Len() int           { return len(b) }
func (b buckets) Less(i, j int) bool { return len(b[i].keys) > len(b[j].keys) }
func (b buckets) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

// slotOccupancy tracks which of a table's m slots are taken during
// construction. A plain bool slice is fine at archive scale; the
// teacher's packed bitVector earns its memory savings only once m runs
// into the millions.
type slotOccupancy []bool

func (o slotOccupancy) isSet(i uint64) bool { return o[i] }
func (o slotOccupancy) set(i uint64)        { o[i] = true }
func (o slotOccupancy) reset() {
	for i := range o {
		o[i] = false
	}
}
func (o slotOccupancy) absorb(other slotOccupancy) {
	for i, v := range other {
		if v {
			o[i] = true
		}
	}
}

// freeze builds a constant-time lookup table using the CHD algorithm.
// load is the table's load factor; 0.75-0.9 is a reasonable range.
func (c *phfBuilder) freeze(load float64) (*phf, error) {
	if load < 0 || load > 1 {
		return nil, fmt.Errorf("index: invalid load factor %f", load)
	}

	m := uint64(float64(len(c.data)) / load)
	m = nextpow2(m)
	bkts := make(buckets, m)
	seeds := make([]uint32, m)

	for i := range bkts {
		bkts[i].slot = uint64(i)
	}

	for key := range c.data {
		j := rhash(0, key, m, c.salt)
		b := &bkts[j]
		b.keys = append(b.keys, key)
	}

	occ := make(slotOccupancy, m)
	bOcc := make(slotOccupancy, m)

	sort.Sort(bkts)

	for i := range bkts {
		b := &bkts[i]
		for s := uint32(1); s < maxSeed; s++ {
			bOcc.reset()
			for _, key := range b.keys {
				h := rhash(s, key, m, c.salt)
				if occ.isSet(h) || bOcc.isSet(h) {
					goto nextSeed
				}
				bOcc.set(h)
			}
			occ.absorb(bOcc)
			seeds[b.slot] = s
			goto nextBucket

		nextSeed:
		}

		return nil, fmt.Errorf("index: no minimal perfect hash after %d tries", maxSeed)
	nextBucket:
	}

	return &phf{seed: seeds, salt: c.salt}, nil
}

// phf is a frozen minimal perfect hash function over a fixed key set.
// It is rebuilt fresh by sidecar.go's Open rather than deserialized, so
// it carries no marshaled form of its own.
type phf struct {
	seed []uint32
	salt uint64
}

func (c *phf) len() int { return len(c.seed) }

// find returns the unique slot for key k. The caller must verify the
// key actually stored at that slot equals k -- find is only meaningful
// for keys that were present at construction time.
func (c *phf) find(k uint64) uint64 {
	m := uint64(len(c.seed))
	h := rhash(0, k, m, c.salt)
	return rhash(c.seed[h], k, m, c.salt)
}

// compression function, borrowed from Zi Long Tan's superfast hash.
func mix(h uint64) uint64 {
	h ^= h >> 23
	h *= 0x2127599bf4325c37
	h ^= h >> 47
	return h
}

func rhash(seed uint32, key, sz, salt uint64) uint64 {
	const m uint64 = 0x880355f21e6d1965
	h := key
	h *= m
	h ^= mix(salt)
	h *= m
	h ^= mix(uint64(seed))
	h *= m
	return mix(h) & (sz - 1)
}

func nextpow2(n uint64) uint64 {
	n = n - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
