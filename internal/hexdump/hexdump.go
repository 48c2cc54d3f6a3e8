// Package hexdump is the supplemented hex-dump utility of
// original_source/BinaryDataDecoder/hexdump.py: an offset/hex/ASCII-gutter
// dump of a byte range, useful for eyeballing the bytes around a
// discovered streak. Pure stdlib: the format is a fixed three-column text
// layout with no third-party formatting concern to wire a dependency
// into.
package hexdump

import (
	"fmt"
	"io"
)

// DefaultBytesPerLine matches the original's n_bytes=16 default.
const DefaultBytesPerLine = 16

// Dump writes data to w, one line per bytesPerLine bytes, each line
// formatted as an 8-digit hex offset (relative to baseOffset), the bytes
// as space-separated two-byte hex groups, and an ASCII gutter where
// non-printable bytes render as '.'.
func Dump(w io.Writer, data []byte, baseOffset int64, bytesPerLine int) error {
	if bytesPerLine <= 0 {
		bytesPerLine = DefaultBytesPerLine
	}

	for i := 0; i < len(data); i += bytesPerLine {
		end := i + bytesPerLine
		if end > len(data) {
			end = len(data)
		}
		line := data[i:end]

		if _, err := fmt.Fprintf(w, "%08x %s: %s\n", baseOffset+int64(i), encodeHex(line), decodeASCII(line)); err != nil {
			return err
		}
	}
	return nil
}

func encodeHex(line []byte) string {
	out := make([]byte, 0, len(line)*3)
	for i := 0; i < len(line); i += 2 {
		if i > 0 {
			out = append(out, ' ')
		}
		out = appendHexByte(out, line[i])
		if i+1 < len(line) {
			out = appendHexByte(out, line[i+1])
		}
	}
	return string(out)
}

const hexDigits = "0123456789abcdef"

func appendHexByte(out []byte, b byte) []byte {
	return append(out, hexDigits[b>>4], hexDigits[b&0xF])
}

func decodeASCII(line []byte) string {
	out := make([]byte, len(line))
	for i, b := range line {
		if b > 31 && b < 127 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
