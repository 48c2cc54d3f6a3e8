// Package scanner implements the parallel work-queue dispatcher of
// spec.md §4.2: it feeds chunks to the Candidate Parser across all
// (type, endian, byte-shift, stride) hypotheses, producing raw seeds.
package scanner

import (
	"context"
	"encoding/binary"
	"sort"
	"sync"
	"sync/atomic"

	farm "github.com/dgryski/go-farm"

	"github.com/kshedden/binfinder/internal/candidate"
	"github.com/kshedden/binfinder/internal/fit"
	"github.com/kshedden/binfinder/internal/model"
)

// Hypothesis is one (element type, endian) pair under test.
type Hypothesis struct {
	ElementType model.ElementType
	Endian      model.Endian
}

// Hypotheses builds the cross product of types and endians, restricted by
// whatever the caller (finder.Config) requested (spec.md §6 `data_types`,
// `endian`).
func Hypotheses(types []model.ElementType, endians []model.Endian) []Hypothesis {
	out := make([]Hypothesis, 0, len(types)*len(endians))
	for _, et := range types {
		for _, e := range endians {
			out = append(out, Hypothesis{ElementType: et, Endian: e})
		}
	}
	return out
}

// Chunk is one partition of the byte source: its absolute base offset
// plus the raw bytes (spec.md §3 "Chunking state").
type Chunk struct {
	Base int64
	Data []byte
}

// RowBound returns value_in_row scaled per spec.md §4.2:
// 2*8+1 = 17 for the default valueInRow=2.
func RowBound(valueInRow int) int {
	return valueInRow*8 + 1
}

// Pass runs one window sweep across all chunks (spec.md §4.2's "pass"):
// numWorkers goroutines draw chunks from a shared atomic cursor, each
// enumerating every (byte_shift, hypothesis, stride_gap) combination over
// its chunk's [windowOffset, windowOffset+windowSize) slice. Cancellation
// is cooperative via ctx (spec.md §5).
func Pass(ctx context.Context, chunks []Chunk, windowOffset int64, windowSize int, rowBound int, hyps []Hypothesis, numWorkers int, cache *candidate.Cache) []model.Seed {
	if numWorkers < 1 {
		numWorkers = 1
	}

	var cursor atomic.Int64
	seedCh := make(chan model.Seed, 4096)

	var workers sync.WaitGroup
	workers.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer workers.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				idx := cursor.Add(1) - 1
				if int(idx) >= len(chunks) {
					return
				}

				chunk := chunks[idx]
				window := windowSlice(chunk.Data, windowOffset, windowSize)
				if len(window) == 0 {
					continue
				}
				scanWindow(window, chunk.Base+windowOffset, rowBound, hyps, cache, seedCh)
			}
		}()
	}

	var seeds []model.Seed
	collected := make(chan struct{})
	go func() {
		for s := range seedCh {
			seeds = append(seeds, s)
		}
		close(collected)
	}()

	workers.Wait()
	close(seedCh)
	<-collected

	return seeds
}

func windowSlice(data []byte, offset int64, size int) []byte {
	if offset < 0 || offset >= int64(len(data)) {
		return nil
	}
	end := offset + int64(size)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end]
}

// scanWindow enumerates the hypothesis lattice over one window, using
// candidate.Placements as the lazy (byte_shift, stride_gap) iterator
// (spec.md design notes §9) crossed with the caller-restricted hypothesis
// list.
func scanWindow(window []byte, base int64, rowBound int, hyps []Hypothesis, cache *candidate.Cache, out chan<- model.Seed) {
	next := candidate.Placements(rowBound)
	for {
		p, ok := next()
		if !ok {
			return
		}
		for _, h := range hyps {
			passed, quality := cache.Evaluate(window, p.ByteShift, p.StrideGap, h.ElementType, h.Endian)
			if !passed || quality > fit.MaxValidationError {
				continue
			}
			out <- model.Seed{
				Offset:      base + int64(p.ByteShift),
				BytesStep:   int64(p.StrideGap),
				ElementType: h.ElementType,
				Endian:      h.Endian,
				Quality:     quality,
			}
		}
	}
}

// DedupSeeds implements spec.md §4.6 step 1: sort by (offset asc,
// (bytes_step+1)*quality asc — the lowest product first, so a lower
// quality value and a narrower stride gap are preferred — an equivalent
// but first-wins formulation of the same total order) and keep only the
// first seed at each offset.
func DedupSeeds(seeds []model.Seed) []model.Seed {
	sorted := append([]model.Seed(nil), seeds...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Offset != sorted[j].Offset {
			return sorted[i].Offset < sorted[j].Offset
		}
		ki := float64(sorted[i].BytesStep+1) * sorted[i].Quality
		kj := float64(sorted[j].BytesStep+1) * sorted[j].Quality
		return ki < kj
	})

	seen := make(map[uint64]bool, len(sorted))
	out := make([]model.Seed, 0, len(sorted))
	for _, s := range sorted {
		key := offsetHash(s.Offset)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// offsetHash hashes a seed's offset with farm.Hash64, grounded in
// grailbio-bio's use of dgryski/go-farm for fast non-cryptographic struct
// keys, here standing in for Go's built-in int64 map key since a batch of
// seeds from a single pass can run into the tens of thousands.
func offsetHash(offset int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(offset))
	return farm.Hash64(buf[:])
}
