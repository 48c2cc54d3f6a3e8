// Package catalog holds the fixed table of supported numeric element
// types (spec.md §3) and the lookup/filter helpers built on top of it.
package catalog

import "github.com/kshedden/binfinder/internal/model"

// entries is the fixed catalogue of spec.md §3, in priority order. The
// bitmask selects the slowly-varying exponent / high-order bits so that
// neighbouring samples of a real sequence differ by a small integer once
// masked and shifted.
var entries = []model.ElementType{
	model.NewElementType(1, model.TagF64, 8, 0x7FE0000000000000),
	model.NewElementType(2, model.TagI64, 8, 0xFFFFFFFFFFF00000),
	model.NewElementType(3, model.TagU64, 8, 0xFFFFFFFFFFF00000),
	model.NewElementType(4, model.TagF32, 4, 0x7F000000),
	model.NewElementType(5, model.TagI32, 4, 0xFFFF0000),
	model.NewElementType(6, model.TagU32, 4, 0xFFFF0000),
	model.NewElementType(7, model.TagI16, 2, 0xFF00),
	model.NewElementType(7, model.TagU16, 2, 0xFF00),
	model.NewElementType(9, model.TagI8, 1, 0xF0),
	model.NewElementType(10, model.TagU8, 1, 0xF0),
}

// All returns the full catalogue, in priority order. Callers must treat
// the result as read-only; entries are immutable process-wide constants
// (spec.md §5).
func All() []model.ElementType {
	out := make([]model.ElementType, len(entries))
	copy(out, entries)
	return out
}

// ByTag returns the catalogue entry for tag, if any.
func ByTag(tag model.Tag) (model.ElementType, bool) {
	for _, e := range entries {
		if e.Tag == tag {
			return e, true
		}
	}
	return model.ElementType{}, false
}

// Filter restricts the catalogue to the requested tags. A nil or empty
// tags slice means "no restriction" (spec.md §6 `data_types` default).
func Filter(tags []model.Tag) []model.ElementType {
	if len(tags) == 0 {
		return All()
	}
	want := make(map[model.Tag]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []model.ElementType
	for _, e := range entries {
		if want[e.Tag] {
			out = append(out, e)
		}
	}
	return out
}
