package model

import "math/bits"

// Tag identifies one of the ten catalogue element types.
type Tag string

const (
	TagF64 Tag = "f64"
	TagI64 Tag = "i64"
	TagU64 Tag = "u64"
	TagF32 Tag = "f32"
	TagI32 Tag = "i32"
	TagU32 Tag = "u32"
	TagI16 Tag = "i16"
	TagU16 Tag = "u16"
	TagI8  Tag = "i8"
	TagU8  Tag = "u8"
)

// ElementType is the immutable descriptor of spec.md §3. Instances are
// built once by the catalogue and shared by value thereafter.
type ElementType struct {
	Priority      int
	Tag           Tag
	WidthBytes    int
	EndianBitmask uint64

	// derived
	RightShift        int
	NormalisedBitmask uint64
	IsSignedInteger   bool
}

// NewElementType derives RightShift/NormalisedBitmask/IsSignedInteger from
// the raw (priority, tag, width, bitmask) tuple, matching
// DataTypeMetaData.__init__ in the original.
func NewElementType(priority int, tag Tag, widthBytes int, endianBitmask uint64) ElementType {
	full := fullMask(widthBytes)
	masked := full & endianBitmask
	shift := 0
	if masked != 0 {
		shift = bits.TrailingZeros64(masked)
	}
	normalised := masked >> uint(shift)

	return ElementType{
		Priority:          priority,
		Tag:               tag,
		WidthBytes:        widthBytes,
		EndianBitmask:     endianBitmask,
		RightShift:        shift,
		NormalisedBitmask: normalised,
		IsSignedInteger:   isSignedTag(tag),
	}
}

func fullMask(widthBytes int) uint64 {
	if widthBytes >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(8*widthBytes)) - 1
}

func isSignedTag(t Tag) bool {
	switch t {
	case TagI64, TagI32, TagI16, TagI8:
		return true
	default:
		return false
	}
}

// IsFloat reports whether the type is f32/f64 — used by the floating-zero
// special case in the streak grower's smoothness comparison (spec.md §4.3).
func (e ElementType) IsFloat() bool {
	return e.Tag == TagF32 || e.Tag == TagF64
}
