package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorDegenerateBelowFour(t *testing.T) {
	assert.Equal(t, 0.0, Error([]float64{1, 2, 3}))
	assert.Equal(t, 0.0, Error(nil))
}

func TestErrorQuadraticSequenceIsLow(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		x := float64(i + 1)
		values[i] = x*x + 2*x + 1
	}
	err := Error(values)
	assert.Less(t, err, 1.0)
}

func TestErrorNoisyDataStaysFinite(t *testing.T) {
	values := []float64{1, -3, 9, -2, 15, 0, 8, -10}
	err := Error(values)
	assert.False(t, err != err, "NaN")
	assert.LessOrEqual(t, err, MaxValue)
}

func TestErrorAllZeroIsMaxValue(t *testing.T) {
	values := []float64{0, 0, 0, 0, 0}
	assert.Equal(t, MaxValue, Error(values))
}
