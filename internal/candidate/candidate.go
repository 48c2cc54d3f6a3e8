// Package candidate implements the Candidate Parser of spec.md §4.1: a
// pure function answering "does this byte window, interpreted with this
// (type, endian, byte-shift, stride), look like a smooth sequence?"
package candidate

import (
	"github.com/kshedden/binfinder/internal/decode"
	"github.com/kshedden/binfinder/internal/fit"
	"github.com/kshedden/binfinder/internal/model"
)

// ThresholdCompareBits is the smoothness threshold of spec.md §4.1: every
// absolute first difference between neighbouring signatures must be
// strictly below this value.
const ThresholdCompareBits = 3

// Signature computes the small non-negative integer obtained by
// interpreting window's bytes as an unsigned integer in the given byte
// order, masking with et.EndianBitmask and shifting right by
// et.RightShift (spec.md §4.1).
func Signature(window []byte, et model.ElementType, endian model.Endian) uint64 {
	var raw uint64
	if endian == model.Big {
		for _, b := range window[:et.WidthBytes] {
			raw = raw<<8 | uint64(b)
		}
	} else {
		for i := et.WidthBytes - 1; i >= 0; i-- {
			raw = raw<<8 | uint64(window[i])
		}
	}
	return (raw & et.EndianBitmask) >> uint(et.RightShift)
}

// Placement is one (byteShift, strideGap) hypothesis.
type Placement struct {
	ByteShift int
	StrideGap int
}

// Placements returns a lazy hypothesis generator: repeated calls yield
// byte_shift in [0, rowBound) crossed with stride_gap in
// [0, rowBound+8), ok=false once exhausted. Expressed as a pure iterator
// per spec.md design notes §9 rather than a precomputed cross product.
func Placements(rowBound int) func() (Placement, bool) {
	shift, gap := 0, -1
	gapBound := rowBound + 8
	return func() (Placement, bool) {
		gap++
		if gap >= gapBound {
			gap = 0
			shift++
		}
		if shift >= rowBound {
			return Placement{}, false
		}
		return Placement{ByteShift: shift, StrideGap: gap}, true
	}
}

// ExtractSamples slices up to five width-byte samples out of chunk,
// starting at byteShift and advancing by width+strideGap each time. It
// returns nil if fewer than three full samples fit, matching spec.md
// §4.1's "rejecting the placement if fewer than three full samples fit".
func ExtractSamples(chunk []byte, byteShift, strideGap, width int) [][]byte {
	stride := width + strideGap
	if stride <= 0 {
		return nil
	}
	var out [][]byte
	for pos := byteShift; pos+width <= len(chunk) && len(out) < 5; pos += stride {
		out = append(out, chunk[pos:pos+width])
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// Evaluate runs the smoothness predicate over a candidate placement and,
// if it passes, scores it with the fit-error function (spec.md §4.1,
// §4.4). ok is false when fewer than three samples fit or the placement
// is not smooth.
func Evaluate(chunk []byte, byteShift, strideGap int, et model.ElementType, endian model.Endian) (ok bool, quality float64) {
	samples := ExtractSamples(chunk, byteShift, strideGap, et.WidthBytes)
	if samples == nil {
		return false, 0
	}

	if !smooth(samples, et, endian) {
		return false, 0
	}

	joined := make([]byte, 0, len(samples)*et.WidthBytes)
	for _, s := range samples {
		joined = append(joined, s...)
	}
	values, err := decode.All(joined, et, endian)
	if err != nil {
		return false, 0
	}

	return true, fit.Error(values)
}

func smooth(samples [][]byte, et model.ElementType, endian model.Endian) bool {
	prev := Signature(samples[0], et, endian)
	for _, s := range samples[1:] {
		cur := Signature(s, et, endian)
		diff := cur - prev
		if cur < prev {
			diff = prev - cur
		}
		if diff >= ThresholdCompareBits {
			return false
		}
		prev = cur
	}
	return true
}
