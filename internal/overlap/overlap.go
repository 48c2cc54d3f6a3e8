// Package overlap implements the Overlap Resolver of spec.md §4.5:
// deduplicate streaks that cover the same bytes, preferring higher
// quality candidates and merging stride-compatible pairs.
package overlap

import (
	"sort"

	"github.com/golang-collections/go-datastructures/bitarray"

	"github.com/kshedden/binfinder/internal/model"
)

// Resolve sorts streaks by offset and, for each pair (A earlier, B
// later), locates the first byte overlap between a sample of A and a
// sample of B by co-advancing indices, then either merges aligned
// stride-compatible pairs, drops the worse-quality streak of an
// unaligned overlap, or leaves disjoint pairs untouched. Output is
// sorted by offset. Calling Resolve twice on its own output is a no-op
// (spec.md §8 property 5). The facade runs it once on each pass's batch
// of grown streaks and twice at the end of the scan, because a first
// merge can change stride alignment and expose new overlaps (spec.md
// §4.5).
func Resolve(streaks []model.Streak) []model.Streak {
	items := append([]model.Streak(nil), streaks...)
	sort.Slice(items, func(i, j int) bool { return items[i].Offset < items[j].Offset })

	removed := make(map[int]bool, len(items))

	for ia := 0; ia < len(items)-1; ia++ {
		if removed[ia] {
			continue
		}

		for ib := ia + 1; ib < len(items); ib++ {
			if removed[ib] {
				continue
			}

			a := items[ia]
			b := items[ib]

			if a.Range.Stop < b.Range.Start {
				break
			}
			if samplesDisjoint(a, b) {
				continue
			}

			merged, aUpdated, removeIB, removeIA := resolvePair(a, b)
			if aUpdated {
				items[ia] = merged
			}
			if removeIB {
				removed[ib] = true
			}
			if removeIA {
				removed[ia] = true
			}
		}
	}

	var out []model.Streak
	for i, s := range items {
		if !removed[i] {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// resolvePair locates the first overlapping sample pair between a and b
// (a earlier) and decides the outcome, per spec.md §4.5's three cases.
func resolvePair(a, b model.Streak) (merged model.Streak, aUpdated, removeIB, removeIA bool) {
	aLen := a.Range.Len()
	bLen := b.Range.Len()
	wordAWidth := int64(a.ElementType.WidthBytes)
	wordBWidth := int64(b.ElementType.WidthBytes)

	wordAIdx := 0
	for jb := 0; jb < bLen; jb++ {
		wordBStart := b.Range.At(jb)

		for k := wordAIdx; k < aLen; k++ {
			wordAStart := a.Range.At(k)
			wordAEnd := wordAStart + wordAWidth
			if wordAEnd <= wordBStart {
				continue
			}

			wordBEnd := wordBStart + wordBWidth
			strideA, strideB := a.Stride(), b.Stride()
			hi, lo := strideA, strideB
			if lo > hi {
				hi, lo = lo, hi
			}

			switch {
			case wordAStart == wordBStart && wordAEnd == wordBEnd && lo != 0 && hi%lo == 0:
				stop := a.Range.Stop
				if b.Range.Stop > stop {
					stop = b.Range.Stop
				}
				a.Range = model.Range{Start: a.Range.Start, Stop: stop, Step: lo}
				a.BytesStep = lo - wordAWidth
				return a, true, true, false

			case wordAStart < wordBEnd:
				if b.QualityIndex > a.QualityIndex {
					return model.Streak{}, false, true, false
				}
				return model.Streak{}, false, false, true

			default:
				wordAIdx = k
			}
			break
		}
	}

	return model.Streak{}, false, false, false
}

// bitmapSpanCap bounds the byte-range intersection samplesDisjoint will
// build a bitmap over; beyond it the exact scan in resolvePair runs
// unconditionally, so correctness never depends on this cap.
const bitmapSpanCap = 1 << 20

// samplesDisjoint is a cheap pre-check ahead of resolvePair's sample
// co-advance: it marks each streak's occupied byte positions within the
// overlapping byte range into a bitarray.BitArray and reports true only
// when the two bitmaps share no set bit, i.e. no sample of A can
// possibly overlap a sample of B at the byte level. A false result means
// "run the exact scan"; a true result is only ever returned when no
// overlap exists, so this can never hide a real case-1/case-2 pair
// (spec.md §4.5). Grounded in kshedden-muscato/muscato_screen's
// bitarray.BitArray-backed Bloom filters, retargeted from k-mer
// membership to byte-position membership.
func samplesDisjoint(a, b model.Streak) bool {
	lo := a.Range.Start
	if b.Range.Start > lo {
		lo = b.Range.Start
	}
	hi := a.Range.Stop
	if b.Range.Stop < hi {
		hi = b.Range.Stop
	}
	if hi <= lo {
		return true
	}

	span := hi - lo
	if span > bitmapSpanCap {
		return false
	}

	aBits := bitarray.NewBitArray(uint64(span))
	markOccupied(aBits, a, lo, hi)

	bBits := bitarray.NewBitArray(uint64(span))
	markOccupied(bBits, b, lo, hi)

	for i := uint64(0); i < uint64(span); i++ {
		set, _ := aBits.GetBit(i)
		if !set {
			continue
		}
		if other, _ := bBits.GetBit(i); other {
			return false
		}
	}
	return true
}

// markOccupied sets one bit per byte that s actually occupies within
// [lo, hi), accounting for the gaps bytes_step introduces between
// samples.
func markOccupied(bits bitarray.BitArray, s model.Streak, lo, hi int64) {
	width := int64(s.ElementType.WidthBytes)
	n := s.Range.Len()
	for i := 0; i < n; i++ {
		start := s.Range.At(i)
		end := start + width
		if end <= lo {
			continue
		}
		if start >= hi {
			break
		}
		from, to := start, end
		if from < lo {
			from = lo
		}
		if to > hi {
			to = hi
		}
		for p := from; p < to; p++ {
			_ = bits.SetBit(uint64(p - lo))
		}
	}
}
