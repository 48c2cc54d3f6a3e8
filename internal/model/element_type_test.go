package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewElementTypeF64(t *testing.T) {
	et := NewElementType(1, TagF64, 8, 0x7FE0000000000000)
	assert.Equal(t, 53, et.RightShift)
	assert.Equal(t, uint64(0x3FF), et.NormalisedBitmask)
	assert.False(t, et.IsSignedInteger)
	assert.True(t, et.IsFloat())
}

func TestNewElementTypeI16(t *testing.T) {
	et := NewElementType(7, TagI16, 2, 0xFF00)
	assert.Equal(t, 8, et.RightShift)
	assert.Equal(t, uint64(0xFF), et.NormalisedBitmask)
	assert.True(t, et.IsSignedInteger)
}

func TestNewElementTypeU8(t *testing.T) {
	et := NewElementType(10, TagU8, 1, 0xF0)
	assert.Equal(t, 4, et.RightShift)
	assert.Equal(t, uint64(0xF), et.NormalisedBitmask)
	assert.False(t, et.IsSignedInteger)
	assert.False(t, et.IsFloat())
}
