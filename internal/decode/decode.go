// Package decode is the single low-level byte-to-number primitive shared
// by the core (candidate parser and streak grower, which need typed
// values purely to score a fit) and the extraction collaborator (which
// persists the decoded values onto a confirmed streak). It is the Go
// analogue of DataTypeMetaData's struct.unpack calls in the original.
package decode

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/kshedden/binfinder/internal/model"
)

// ErrShortBuffer is returned when a buffer is too small to hold the
// requested number of elements of a type.
var ErrShortBuffer = errors.New("buffer too short for element type")

// One decodes a single element of et's width from raw, in the given byte
// order, as a float64 (the common currency used by the fit function).
func One(raw []byte, et model.ElementType, endian model.Endian) (float64, error) {
	if len(raw) < et.WidthBytes {
		return 0, ErrShortBuffer
	}
	raw = raw[:et.WidthBytes]

	order := byteOrder(endian)

	switch et.Tag {
	case model.TagF64:
		return math.Float64frombits(order.Uint64(raw)), nil
	case model.TagF32:
		return float64(math.Float32frombits(order.Uint32(raw))), nil
	case model.TagI64:
		return float64(int64(order.Uint64(raw))), nil
	case model.TagU64:
		return float64(order.Uint64(raw)), nil
	case model.TagI32:
		return float64(int32(order.Uint32(raw))), nil
	case model.TagU32:
		return float64(order.Uint32(raw)), nil
	case model.TagI16:
		return float64(int16(order.Uint16(raw))), nil
	case model.TagU16:
		return float64(order.Uint16(raw)), nil
	case model.TagI8:
		return float64(int8(raw[0])), nil
	case model.TagU8:
		return float64(raw[0]), nil
	default:
		return 0, errors.Errorf("decode: unsupported tag %q", et.Tag)
	}
}

// All decodes a tightly-packed run of n elements (as produced by joining
// samples at their natural width, with no inter-sample gap) into a slice
// of float64.
func All(raw []byte, et model.ElementType, endian model.Endian) ([]float64, error) {
	n := len(raw) / et.WidthBytes
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		v, err := One(raw[i*et.WidthBytes:], et, endian)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type byteOrderIface interface {
	Uint16([]byte) uint16
	Uint32([]byte) uint32
	Uint64([]byte) uint64
}

func byteOrder(endian model.Endian) byteOrderIface {
	if endian == model.Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
