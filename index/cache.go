// cache.go -- memoizes recently-extracted payload bytes by path, the
// same role the teacher's DBReader.cache plays for raw DB records.
package index

import (
	lru "github.com/opencoff/golang-lru"
)

// EntryCache holds recently extracted entry payloads in memory so a
// caller walking the same archive repeatedly (e.g. serving the same
// few hot files over and over) doesn't re-run Extract every time.
type EntryCache struct {
	arc *lru.ARCCache
}

// NewCache returns an EntryCache holding at most size payloads. A
// non-positive size falls back to a small default, matching the
// teacher's own DBReader default.
func NewCache(size int) *EntryCache {
	if size <= 0 {
		size = 128
	}
	arc, err := lru.NewARC(size)
	if err != nil {
		// Only returned by golang-lru for a non-positive size, which
		// is excluded above.
		panic(err)
	}
	return &EntryCache{arc: arc}
}

// Get returns the cached payload for path, if present.
func (c *EntryCache) Get(path string) ([]byte, bool) {
	v, ok := c.arc.Get(path)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// Add stores payload under path, evicting the least valuable entry if
// the cache is full.
func (c *EntryCache) Add(path string, payload []byte) {
	c.arc.Add(path, payload)
}

// Purge empties the cache.
func (c *EntryCache) Purge() {
	c.arc.Purge()
}
