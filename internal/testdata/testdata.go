// Package testdata generates the deterministic synthetic fixtures of
// spec.md §8's testable properties, the way muscato_gendat builds
// deterministic synthetic fastq/gene files: plain value-generator
// functions plus little-endian packers, no randomness involved since
// these scenarios must reproduce exact expected offsets and values.
//
// Grounded in original_source/tests/prepare_test_data.py's literal
// sequences (double_v, short_v, int_v, the sqrt/expo variants, and the
// interleaved "ddi" fixture); the manifest in scenarios.toml names them
// the way the teacher's tests/tests.toml names its test cases.
package testdata

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/BurntSushi/toml"
)

//go:embed scenarios.toml
var scenariosTOML string

// Scenario names and describes one literal fixture from spec.md §8.
type Scenario struct {
	Name       string
	Tag        string
	Count      int
	RangeStart int
}

// LoadScenarios decodes scenarios.toml, the same toml.Decode(string, &v)
// call shape as tests/test.go's getTests in the teacher.
func LoadScenarios() ([]Scenario, error) {
	type manifest struct {
		Scenario []Scenario
	}
	var m manifest
	if _, err := toml.Decode(scenariosTOML, &m); err != nil {
		return nil, err
	}
	return m.Scenario, nil
}

// DoubleV is prepare_test_data.py's double_v: (x-25)*0.1 for x in [10, 500).
func DoubleV() []float64 {
	return genF64(10, 500, func(x int) float64 { return float64(x-25) * 0.1 })
}

// DoubleSqrtV is prepare_test_data.py's double_sqrt_v: (x*0.1)^2.
func DoubleSqrtV() []float64 {
	return genF64(10, 500, func(x int) float64 { v := float64(x) * 0.1; return v * v })
}

// DoubleExpoV is prepare_test_data.py's double_expo_v: 2^(x*0.1).
func DoubleExpoV() []float64 {
	return genF64(10, 500, func(x int) float64 { return math.Pow(2, float64(x)*0.1) })
}

// ShortV is prepare_test_data.py's short_v: (x-250)*100 for x in [10, 500),
// as i16.
func ShortV() []int16 {
	out := make([]int16, 0, 490)
	for x := 10; x < 500; x++ {
		out = append(out, int16((x-250)*100))
	}
	return out
}

// IntV is prepare_test_data.py's int_v: x*1000 for x in [10, 500), as i32.
func IntV() []int32 {
	out := make([]int32, 0, 490)
	for x := 10; x < 500; x++ {
		out = append(out, int32(x*1000))
	}
	return out
}

func genF64(lo, hi int, f func(int) float64) []float64 {
	out := make([]float64, 0, hi-lo)
	for x := lo; x < hi; x++ {
		out = append(out, f(x))
	}
	return out
}

// PackF64LE packs values little-endian, 8 bytes each.
func PackF64LE(values []float64) []byte {
	out := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

// PackI16LE packs values little-endian, 2 bytes each.
func PackI16LE(values []int16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// PackI32LE packs values little-endian, 4 bytes each.
func PackI32LE(values []int32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}

// WithSeparator inserts sep between every pair of consecutive packed
// samples (but not at the start or end), the way
// prepare_test_data.py.add_byte_seperator builds the "_sep" fixture
// variants exercising spec.md §8 property 2 (bytes_step = len(sep)).
func WithSeparator(packed []byte, width int, sep []byte) []byte {
	n := len(packed) / width
	if n == 0 {
		return nil
	}
	out := make([]byte, 0, len(packed)+len(sep)*(n-1))
	for i := 0; i < n; i++ {
		out = append(out, packed[i*width:(i+1)*width]...)
		if i < n-1 {
			out = append(out, sep...)
		}
	}
	return out
}

// BuildDDI interleaves DoubleV, DoubleExpoV and IntV into one buffer of
// 20-byte records [d(8)][d(8)][i(4)], the literal "ddi" fixture of
// spec.md §8 property 3/4: three streaks with offsets {0, 8, 16} and
// stride 20.
func BuildDDI() []byte {
	d := DoubleV()
	e := DoubleExpoV()
	iv := IntV()

	n := len(d)
	out := make([]byte, 0, n*20)
	for i := 0; i < n; i++ {
		rec := make([]byte, 20)
		binary.LittleEndian.PutUint64(rec[0:8], math.Float64bits(d[i]))
		binary.LittleEndian.PutUint64(rec[8:16], math.Float64bits(e[i]))
		binary.LittleEndian.PutUint32(rec[16:20], uint32(iv[i]))
		out = append(out, rec...)
	}
	return out
}

// ZeroCrossingF64 builds an f64 sequence that steps through zero, to
// exercise the floating-zero special case of spec.md §4.3/§9 (the
// |compare - bitmask/2| adjustment when either neighbouring raw value is
// exactly zero). Not present in the original fixtures; added because the
// design notes explicitly call out this edge case as worth a dedicated
// test.
func ZeroCrossingF64() []float64 {
	out := make([]float64, 0, 40)
	for x := -20; x < 20; x++ {
		out = append(out, float64(x)*0.5)
	}
	return out
}
