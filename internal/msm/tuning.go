package msm

import (
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// tuningKey identifies an (n, nThreads) pair whose chosen bits_per_chunk has
// been observed, so repeated MSM calls of the same shape within a run (the
// driver dispatches four to five MSMs per Prove call of near-identical
// sizes, spec §4.8) skip re-deriving it.
type tuningKey struct {
	N        int `cbor:"n"`
	NThreads int `cbor:"t"`
}

type tuningEntry struct {
	Key          tuningKey `cbor:"key"`
	BitsPerChunk int       `cbor:"bits"`
}

// TuningCache persists observed bits_per_chunk choices across process
// lifetimes via CBOR, the same compact-serialization role the teacher's
// stack uses cbor for. It is safe for concurrent use.
type TuningCache struct {
	mu      sync.RWMutex
	entries map[tuningKey]int
}

// NewTuningCache returns an empty cache.
func NewTuningCache() *TuningCache {
	return &TuningCache{entries: make(map[tuningKey]int)}
}

// Observe records the bits_per_chunk chosen for (n, nThreads).
func (c *TuningCache) Observe(n, nThreads, bitsPerChunk int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tuningKey{N: n, NThreads: nThreads}] = bitsPerChunk
}

// Lookup returns a previously observed bits_per_chunk for (n, nThreads), if
// any.
func (c *TuningCache) Lookup(n, nThreads int) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[tuningKey{N: n, NThreads: nThreads}]
	return v, ok
}

// Save CBOR-encodes the cache's contents.
func (c *TuningCache) Save() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]tuningEntry, 0, len(c.entries))
	for k, v := range c.entries {
		list = append(list, tuningEntry{Key: k, BitsPerChunk: v})
	}
	return cbor.Marshal(list)
}

// Load replaces the cache's contents with a previously Save-d encoding.
func (c *TuningCache) Load(b []byte) error {
	var list []tuningEntry
	if err := cbor.Unmarshal(b, &list); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[tuningKey]int, len(list))
	for _, e := range list {
		c.entries[e.Key] = e.BitsPerChunk
	}
	return nil
}
