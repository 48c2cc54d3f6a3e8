// Package extract is the typed-value extraction collaborator of spec.md
// §1: it reads each confirmed streak's bytes back out of the byte source
// and decodes them, populating model.Streak.Values. This never runs
// during scanning — only once a streak is final.
package extract

import (
	"github.com/kshedden/binfinder/internal/bytesource"
	"github.com/kshedden/binfinder/internal/decode"
	"github.com/kshedden/binfinder/internal/model"
)

// One decodes a single streak's values from src, returning a copy of s
// with Values populated.
func One(src *bytesource.Source, s model.Streak) (model.Streak, error) {
	n := s.Range.Len()
	width := s.ElementType.WidthBytes
	joined := make([]byte, 0, n*width)

	for i := 0; i < n; i++ {
		pos := s.Range.At(i)
		b, err := src.At(pos, width)
		if err != nil {
			break
		}
		joined = append(joined, b...)
	}

	values, err := decode.All(joined, s.ElementType, s.Endian)
	if err != nil {
		return s, err
	}
	s.Values = values
	return s, nil
}

// All decodes every streak in streaks. A streak whose range runs past the
// end of src gets the values of the samples that could be read (One stops
// at the first out-of-range sample); a streak that fails to decode keeps
// its Values unchanged rather than aborting the whole batch — consistent
// with spec.md §7's "no error is retried; discards only the offending
// hypothesis".
func All(src *bytesource.Source, streaks []model.Streak) []model.Streak {
	out := make([]model.Streak, len(streaks))
	for i, s := range streaks {
		extracted, err := One(src, s)
		if err != nil {
			out[i] = s
			continue
		}
		out[i] = extracted
	}
	return out
}
