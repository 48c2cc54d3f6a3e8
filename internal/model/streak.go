package model

import "github.com/pkg/errors"

// ErrInvalidStreak is returned by Streak.Validate when the range invariants
// of spec.md §3 do not hold. The finder discards the offending streak
// rather than propagating this further (spec.md §7).
var ErrInvalidStreak = errors.New("streak violates range invariants")

// Range is the arithmetic progression of sample start offsets a streak
// covers: {Start, Start+Step, ..., <Stop}.
type Range struct {
	Start int64
	Stop  int64
	Step  int64
}

// Len returns the number of samples in the range.
func (r Range) Len() int {
	if r.Step <= 0 || r.Stop <= r.Start {
		return 0
	}
	n := (r.Stop - r.Start + r.Step - 1) / r.Step
	if n < 0 {
		return 0
	}
	return int(n)
}

// At returns the i-th sample offset in the range.
func (r Range) At(i int) int64 {
	return r.Start + int64(i)*r.Step
}

// Values iterates the sample offsets in the range.
func (r Range) Values() []int64 {
	n := r.Len()
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = r.At(i)
	}
	return out
}

// Streak is FoundDataInfo from spec.md §3: a maximal grown arithmetic
// progression of sample offsets, together with its quality.
//
// Open question (type priority ties, i16/u16): Streak carries no tie-break
// beyond plain QualityIndex comparison — two streaks at the same offset
// with equal quality keep whichever the caller inserted first. See
// DESIGN.md.
type Streak struct {
	Offset       int64
	BytesStep    int64
	ElementType  ElementType
	Endian       Endian
	QualityIndex float64
	Range        Range
	Values       []float64
}

// Stride is the byte distance between successive samples.
func (s Streak) Stride() int64 {
	return int64(s.ElementType.WidthBytes) + s.BytesStep
}

// Validate checks the invariants of spec.md §3.
func (s Streak) Validate(fileSize int64) error {
	stride := s.Stride()
	if stride < int64(s.ElementType.WidthBytes) {
		return errors.Wrap(ErrInvalidStreak, "stride shorter than element width")
	}
	if s.Range.Start != s.Offset {
		return errors.Wrap(ErrInvalidStreak, "range.start != offset")
	}
	if s.Range.Step != stride {
		return errors.Wrap(ErrInvalidStreak, "range.step != width+bytes_step")
	}
	if s.Range.Stop > fileSize {
		return errors.Wrap(ErrInvalidStreak, "range.stop exceeds file size")
	}
	return nil
}

// ClipToFileSize returns a copy of s with Range.Stop clamped to fileSize
// (spec.md §4.2 "streak ranges are clipped to file_size").
func (s Streak) ClipToFileSize(fileSize int64) Streak {
	if s.Range.Stop > fileSize {
		s.Range.Stop = fileSize
	}
	return s
}

// Seed is a pre-growth candidate produced by the scanner (spec.md §4.2).
type Seed struct {
	Offset      int64
	BytesStep   int64
	ElementType ElementType
	Endian      Endian
	Quality     float64
}
