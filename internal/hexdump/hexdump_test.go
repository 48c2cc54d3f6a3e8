package hexdump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpFormatsOffsetHexASCII(t *testing.T) {
	var buf bytes.Buffer
	data := []byte("Hello, world!!!")

	require.NoError(t, Dump(&buf, data, 0, DefaultBytesPerLine))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "00000000 "))
	assert.Contains(t, out, "Hello, world!!!")
}

func TestDumpNonPrintableBytesBecomeDots(t *testing.T) {
	var buf bytes.Buffer
	data := []byte{0x00, 0x01, 'A', 0x7F}

	require.NoError(t, Dump(&buf, data, 0, DefaultBytesPerLine))
	assert.Contains(t, buf.String(), "..A.")
}

func TestDumpUsesBaseOffset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, []byte{1, 2, 3}, 0x100, DefaultBytesPerLine))
	assert.True(t, strings.HasPrefix(buf.String(), "00000100 "))
}

func TestDumpWrapsAtBytesPerLine(t *testing.T) {
	var buf bytes.Buffer
	data := make([]byte, 20)
	require.NoError(t, Dump(&buf, data, 0, 8))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
}
