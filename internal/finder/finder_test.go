package finder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kshedden/binfinder/internal/bytesource"
	"github.com/kshedden/binfinder/internal/model"
	"github.com/kshedden/binfinder/internal/testdata"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.MinLengthData = 40
	cfg.NumberOfThreads = 2
	return cfg
}

// TestRunRecoversSingleSequence is spec.md §8 property 1: a single
// arithmetic f64 sequence packed with no separator yields exactly one
// streak covering the whole buffer with the right type and endian.
func TestRunRecoversSingleSequence(t *testing.T) {
	values := testdata.DoubleV()
	buf := testdata.PackF64LE(values)
	src := bytesource.FromBytes(buf)
	defer src.Close()

	sess, err := NewSession(src, smallConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, sess.Run(context.Background()))

	results := sess.Results()
	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, int64(0), r.Offset)
	assert.Equal(t, model.TagF64, r.ElementType.Tag)
	assert.Equal(t, model.Little, r.Endian)
	assert.Equal(t, int64(len(buf)), r.Range.Stop)
}

// TestRunRecoversInterleavedStreaks is spec.md §8 property 3: the literal
// "ddi" fixture must yield three streaks at offsets {0, 8, 16} with stride
// 20 when both f64 and i32 hypotheses are enabled.
func TestRunRecoversInterleavedStreaks(t *testing.T) {
	buf := testdata.BuildDDI()
	src := bytesource.FromBytes(buf)
	defer src.Close()

	cfg := smallConfig()
	cfg.DataTypes = []model.Tag{model.TagF64, model.TagI32}

	sess, err := NewSession(src, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, sess.Run(context.Background()))

	results := sess.Results()
	offsets := make(map[int64]model.Streak, len(results))
	for _, r := range results {
		offsets[r.Offset] = r
	}

	require.Contains(t, offsets, int64(0))
	require.Contains(t, offsets, int64(8))
	require.Contains(t, offsets, int64(16))
	for off, r := range offsets {
		assert.Equal(t, int64(20), r.Range.Step, "offset %d", off)
	}
}

// TestRunSubsetRecoversOnlyRequestedType is spec.md §8 property 4: with
// only the f64 hypothesis enabled on the ddi fixture, exactly the two f64
// streaks (offsets 0 and 8) come back.
func TestRunSubsetRecoversOnlyRequestedType(t *testing.T) {
	buf := testdata.BuildDDI()
	src := bytesource.FromBytes(buf)
	defer src.Close()

	cfg := smallConfig()
	cfg.DataTypes = []model.Tag{model.TagF64}

	sess, err := NewSession(src, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, sess.Run(context.Background()))

	results := sess.Results()
	offsets := make(map[int64]bool, len(results))
	for _, r := range results {
		assert.Equal(t, model.TagF64, r.ElementType.Tag)
		offsets[r.Offset] = true
	}
	assert.True(t, offsets[0])
	assert.True(t, offsets[8])
	assert.False(t, offsets[16], "i32 streak must not appear when only f64 is requested")
}

// TestRunClipsStreaksToFileSize is spec.md §8 property 7.
func TestRunClipsStreaksToFileSize(t *testing.T) {
	values := testdata.DoubleV()
	buf := testdata.PackF64LE(values)
	src := bytesource.FromBytes(buf)
	defer src.Close()

	sess, err := NewSession(src, smallConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, sess.Run(context.Background()))

	for _, r := range sess.Results() {
		assert.LessOrEqual(t, r.Range.Stop, int64(len(buf)))
	}
}

func TestRunCancellationReturnsPartialResults(t *testing.T) {
	values := testdata.DoubleV()
	buf := testdata.PackF64LE(values)
	src := bytesource.FromBytes(buf)
	defer src.Close()

	sess, err := NewSession(src, smallConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sess.Run(ctx)
	assert.NoError(t, err, "a cancelled session still returns cleanly with whatever was resolved")
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	src := bytesource.FromBytes(make([]byte, 16))
	defer src.Close()

	cfg := DefaultConfig()
	cfg.NumberOfThreads = 0
	_, err := NewSession(src, cfg, nil)
	assert.Error(t, err)
}

func TestWriteAndLoadResultsFromFile(t *testing.T) {
	values := testdata.DoubleV()
	buf := testdata.PackF64LE(values)
	src := bytesource.FromBytes(buf)
	defer src.Close()

	sess, err := NewSession(src, smallConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, sess.Run(context.Background()))
	before := sess.Results()
	require.NotEmpty(t, before)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, sess.WriteResultsToFile(path))

	loaded, err := NewSession(src, smallConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, loaded.LoadResultsFromFile(path))
	assert.Equal(t, len(before), len(loaded.Results()))
}
