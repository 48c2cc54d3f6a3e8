package candidate

import (
	"sync"

	"github.com/chmduquesne/rollinghash/buzhash32"

	"github.com/kshedden/binfinder/internal/model"
)

// verdict is the cached outcome of evaluating one test window.
type verdict struct {
	ok      bool
	quality float64
}

// Cache memoises Evaluate by a rolling hash of the test window's bytes.
// Real capture files contain long constant/padding runs; without this
// cache every byte-shift × type × endian × stride-gap hypothesis
// re-evaluates the same identical window independently, which dominates
// scan time on such regions. Grounded in
// kshedden-muscato/muscato_screen's buzhash32 sketching of k-mer windows,
// retargeted at raw byte windows.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]verdict
}

// NewCache returns an empty verdict cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]verdict)}
}

// Evaluate behaves exactly like the package-level Evaluate, but consults
// (and populates) the cache first. The cache key folds in the element
// type tag and endianness, since the same bytes parse differently under
// different hypotheses.
func (c *Cache) Evaluate(chunk []byte, byteShift, strideGap int, et model.ElementType, endian model.Endian) (ok bool, quality float64) {
	samples := ExtractSamples(chunk, byteShift, strideGap, et.WidthBytes)
	if samples == nil {
		return false, 0
	}

	key := windowHash(samples, et, endian)

	c.mu.Lock()
	if v, found := c.entries[key]; found {
		c.mu.Unlock()
		return v.ok, v.quality
	}
	c.mu.Unlock()

	ok, quality = Evaluate(chunk, byteShift, strideGap, et, endian)

	c.mu.Lock()
	c.entries[key] = verdict{ok: ok, quality: quality}
	c.mu.Unlock()

	return ok, quality
}

func windowHash(samples [][]byte, et model.ElementType, endian model.Endian) uint64 {
	// A buzhash Write (re)initialises its rolling window with the written
	// bytes, so the whole window is written in one call.
	var joined []byte
	for _, s := range samples {
		joined = append(joined, s...)
	}
	h := buzhash32.New()
	_, _ = h.Write(joined)
	sum := uint64(h.Sum32())
	// Fold in the hypothesis identity: identical bytes under different
	// (type, endian) hypotheses must not share a cache entry.
	sum = sum*31 + uint64(et.WidthBytes)
	sum = sum*31 + uint64(len(et.Tag))
	if endian == model.Big {
		sum = sum*31 + 1
	}
	for _, r := range et.Tag {
		sum = sum*31 + uint64(r)
	}
	return sum
}
