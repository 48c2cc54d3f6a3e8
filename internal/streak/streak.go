// Package streak implements the Streak Grower of spec.md §4.3: given a
// seed, walk outward sample-by-sample until the smoothness predicate
// breaks, producing a maximal streak with a quality score.
package streak

import (
	"github.com/kshedden/binfinder/internal/bytesource"
	"github.com/kshedden/binfinder/internal/candidate"
	"github.com/kshedden/binfinder/internal/decode"
	"github.com/kshedden/binfinder/internal/fit"
	"github.com/kshedden/binfinder/internal/model"
)

// ThresholdCompareBits mirrors candidate.ThresholdCompareBits; growth and
// seeding share the same smoothness threshold (spec.md §4.1, §4.3).
const ThresholdCompareBits = candidate.ThresholdCompareBits

// Grow extends seed bidirectionally until the smoothness predicate
// breaks in each direction, then scores the resulting range. totalSize
// is the file size, used by the coverage-reward term of the quality
// score.
func Grow(src *bytesource.Source, seed model.Seed, totalSize int64) model.Streak {
	stride := int64(seed.ElementType.WidthBytes) + seed.BytesStep

	start := walk(src, seed.Offset, seed.ElementType, seed.Endian, stride, true)
	stop := walk(src, seed.Offset, seed.ElementType, seed.Endian, stride, false)

	s := model.Streak{
		Offset:      start,
		BytesStep:   seed.BytesStep,
		ElementType: seed.ElementType,
		Endian:      seed.Endian,
		Range:       model.Range{Start: start, Stop: stop, Step: stride},
	}
	s.QualityIndex = quality(src, totalSize, s)
	return s
}

// walk moves from offset in the given direction (backward=true walks
// toward lower offsets) until the compare-value rule of spec.md §4.3
// rejects the next sample or the read would fall outside the file
// (spec.md §7 OutOfRange, converted to streak termination here).
func walk(src *bytesource.Source, offset int64, et model.ElementType, endian model.Endian, stride int64, backward bool) int64 {
	window, err := src.At(offset, et.WidthBytes)
	if err != nil {
		return offset
	}
	lastSig := candidate.Signature(window, et, endian)

	step := stride
	if backward {
		step = -stride
	}

	pos := offset
	for {
		next := pos + step
		if next < 0 {
			return pos
		}
		w, err := src.At(next, et.WidthBytes)
		if err != nil {
			if backward {
				return pos
			}
			return next
		}
		newSig := candidate.Signature(w, et, endian)

		if compareValue(newSig, lastSig, et) >= ThresholdCompareBits {
			if backward {
				return pos
			}
			return next
		}

		lastSig = newSig
		pos = next
	}
}

// compareValue implements spec.md §4.3's compare-value rule over two
// consecutive signatures.
func compareValue(newSig, lastSig uint64, et model.ElementType) uint64 {
	base := absDiff(newSig, lastSig)

	if et.IsSignedInteger && et.NormalisedBitmask != 0 {
		base %= et.NormalisedBitmask
	}
	if et.IsFloat() && (newSig == 0 || lastSig == 0) {
		half := et.NormalisedBitmask / 2
		base = absDiff(base, half)
	}
	return base
}

func absDiff(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return b - a
}

// quality implements spec.md §4.3's quality score: sample the streak at
// every fourth position, scoring a sliding window of up to five raw
// values with the fit-error function, then average and add the priority
// and coverage penalty/reward terms.
func quality(src *bytesource.Source, totalSize int64, s model.Streak) float64 {
	et := s.ElementType
	n := s.Range.Len()
	if n == 0 {
		return fit.MaxValue
	}

	var window [][]byte
	var sumErr float64
	var steps int

	for i := 0; i < n; i++ {
		pos := s.Range.At(i)
		b, err := src.At(pos, et.WidthBytes)
		if err != nil {
			break
		}
		window = append(window, b)
		if len(window)%4 == 0 {
			if len(window) > 5 {
				window = window[len(window)-5:]
			}
			sumErr += sliceFitError(window, et, s.Endian)
			steps++
		}
	}

	if steps == 0 {
		return fit.MaxValue
	}

	q := sumErr / float64(steps) / float64(n) * float64(et.WidthBytes)
	q += 20 * float64(et.Priority)
	q += 100 - (500 * float64(n) * float64(et.WidthBytes) / float64(totalSize))
	return q
}

func sliceFitError(samples [][]byte, et model.ElementType, endian model.Endian) float64 {
	joined := make([]byte, 0, len(samples)*et.WidthBytes)
	for _, s := range samples {
		joined = append(joined, s...)
	}
	values, err := decode.All(joined, et, endian)
	if err != nil {
		return fit.MaxValue
	}
	return fit.Error(values)
}
