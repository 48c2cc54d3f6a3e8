package streak

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshedden/binfinder/internal/bytesource"
	"github.com/kshedden/binfinder/internal/catalog"
	"github.com/kshedden/binfinder/internal/model"
	"github.com/kshedden/binfinder/internal/testdata"
)

func packF64LE(values []float64) []byte {
	out := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func TestGrowCoversWholeSmoothRun(t *testing.T) {
	et, _ := catalog.ByTag(model.TagF64)
	values := testdata.DoubleV()
	buf := packF64LE(values)
	src := bytesource.FromBytes(buf)
	defer src.Close()

	mid := len(values) / 2
	seed := model.Seed{Offset: int64(mid * 8), ElementType: et, Endian: model.Little}

	s := Grow(src, seed, int64(len(buf)))

	assert.Equal(t, int64(0), s.Range.Start)
	assert.Equal(t, int64(len(buf)), s.Range.Stop)
	assert.Equal(t, int64(8), s.Range.Step)
	assert.False(t, s.QualityIndex != s.QualityIndex, "NaN quality")
}

func TestGrowStopsAtSeparator(t *testing.T) {
	et, _ := catalog.ByTag(model.TagF64)
	values := testdata.DoubleV()
	packed := packF64LE(values)
	withSep := testdata.WithSeparator(packed, 8, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	src := bytesource.FromBytes(withSep)
	defer src.Close()

	seed := model.Seed{Offset: 16, ElementType: et, Endian: model.Little}
	s := Grow(src, seed, int64(len(withSep)))

	assert.LessOrEqual(t, s.Range.Stop, int64(len(packed)+4))
}

func TestCompareValueSignedIntegerWraps(t *testing.T) {
	et, _ := catalog.ByTag(model.TagI16)
	got := compareValue(0, et.NormalisedBitmask, et)
	assert.Equal(t, uint64(0), got)
}

func TestCompareValueFloatZeroCrossing(t *testing.T) {
	et, _ := catalog.ByTag(model.TagF64)
	values := testdata.ZeroCrossingF64()
	require.NotEmpty(t, values)

	buf := packF64LE(values)
	src := bytesource.FromBytes(buf)
	defer src.Close()

	seed := model.Seed{Offset: 0, ElementType: et, Endian: model.Little}
	s := Grow(src, seed, int64(len(buf)))
	assert.GreaterOrEqual(t, s.Range.Len(), 1)
}

func TestAbsDiff(t *testing.T) {
	assert.Equal(t, uint64(3), absDiff(5, 2))
	assert.Equal(t, uint64(3), absDiff(2, 5))
}
