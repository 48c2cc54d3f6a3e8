// Package leftover is the supplemented leftovers writer of
// original_source/BinaryDataDecoder/extract_data.py's write_bin_leftovers:
// rewrite the input with every discovered streak's sample bytes blanked
// out using a repeating 2-byte marker not otherwise present in the file,
// then strip the marker bytes entirely from the output — a stronger
// "what's left to explain" view than just zeroing the bytes in place.
package leftover

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/willf/bloom"

	"github.com/kshedden/binfinder/internal/bytesource"
	"github.com/kshedden/binfinder/internal/model"
)

// ErrNoUnusedPair is returned when all 65536 two-byte values already
// appear somewhere in the file — exceedingly unlikely for any file large
// enough to contain a discoverable streak, but possible for tiny inputs.
var ErrNoUnusedPair = errors.New("leftover: no unused 2-byte marker available")

// FindUnusedPair scans data for a 2-byte value that never occurs as a
// contiguous pair anywhere in it, using a Bloom filter of observed pairs
// instead of a 65536-entry presence map or a full N*65536 scan — the same
// sketching idiom muscato_screen.buildBloom uses for candidate read
// subsequences, applied here to the 65536-element byte-pair space. A
// false positive only ever makes the search skip a pair that is actually
// unused, never accept one that is actually used, so the marker this
// returns is always safe to treat as absent from data.
func FindUnusedPair(data []byte) ([2]byte, bool) {
	filter := bloom.NewWithEstimates(uint(max(1, len(data))), 0.01)
	for i := 0; i+1 < len(data); i++ {
		filter.Add(data[i : i+2])
	}

	pair := make([]byte, 2)
	for b1 := 0; b1 < 256; b1++ {
		for b2 := 0; b2 < 256; b2++ {
			pair[0], pair[1] = byte(b1), byte(b2)
			if !filter.Test(pair) {
				return [2]byte{byte(b1), byte(b2)}, true
			}
		}
	}
	return [2]byte{}, false
}

// Write rewrites src's bytes to path with every sample of every streak in
// streaks blanked with the discovered marker, then strips every
// occurrence of the marker from the output.
func Write(path string, src *bytesource.Source, streaks []model.Streak) error {
	data := src.Window(0, int(src.Size()))

	marker, ok := FindUnusedPair(data)
	if !ok {
		return ErrNoUnusedPair
	}

	buf := append([]byte(nil), data...)
	blank(buf, marker, streaks)

	stripped := bytes.ReplaceAll(buf, marker[:], nil)

	if err := os.WriteFile(path, stripped, 0o644); err != nil {
		return errors.Wrapf(err, "leftover: write %s", path)
	}
	return nil
}

// blank overwrites every sample byte range of every streak with the
// marker pattern, repeating it across the full sample width.
func blank(buf []byte, marker [2]byte, streaks []model.Streak) {
	for _, s := range streaks {
		width := s.ElementType.WidthBytes
		n := s.Range.Len()
		for i := 0; i < n; i++ {
			start := s.Range.At(i)
			end := start + int64(width)
			if start < 0 || end > int64(len(buf)) {
				continue
			}
			for p := start; p < end; p++ {
				if (p-start)%2 == 0 {
					buf[p] = marker[0]
				} else {
					buf[p] = marker[1]
				}
			}
		}
	}
}
