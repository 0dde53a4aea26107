package embedding

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// Cache stores vectors by key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]float64, bool, error)
	Set(ctx context.Context, key string, v []float64) error
}

// MemoryCache is an in-process Cache bounded by entry count.
// When full, an arbitrary entry is evicted.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string][]float64
	maxEntries int
}

// NewMemoryCache creates a cache holding at most maxEntries vectors (unbounded if <= 0)
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float64), maxEntries: maxEntries}
}

// Get returns a copy of the cached vector
func (c *MemoryCache) Get(_ context.Context, key string) ([]float64, bool, error) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores a copy of v
func (c *MemoryCache) Set(_ context.Context, key string, v []float64) error {
	stored := make([]float64, len(v))
	copy(stored, v)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = stored
	return nil
}

// Len returns the number of cached vectors
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// encodeVector packs v as little-endian float64s
func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

func decodeVector(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("corrupt vector payload of %d bytes", len(buf))
	}
	v := make([]float64, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return v, nil
}
