// Package bytesource is the random-access Byte Source of spec.md §3: an
// ordered list of fixed-size chunks whose concatenation reproduces the
// input file, presented over a memory-mapped view so multi-gigabyte
// capture files do not require a matching heap allocation.
package bytesource

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrOutOfRange is spec.md §7's OutOfRange condition: a sample read that
// would fall outside the file. Callers convert this into streak
// termination at the current boundary rather than propagating it.
var ErrOutOfRange = errors.New("bytesource: read out of range")

// Source is a read-only, random-access view over a byte buffer. The zero
// value is not usable; construct with Open or FromBytes.
type Source struct {
	data []byte
	file *os.File
}

// Open memory-maps path read-only. A missing or zero-size file is a
// ConfigError-class failure (spec.md §7) and is returned as an error
// rather than panicking.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bytesource: open %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "bytesource: stat %s", path)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, errors.Errorf("bytesource: %s is empty", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "bytesource: mmap %s", path)
	}

	return &Source{data: data, file: f}, nil
}

// FromBytes wraps an in-memory buffer as a Source. Used by tests and
// internal/testdata, which build synthetic fixtures without touching
// disk.
func FromBytes(data []byte) *Source {
	return &Source{data: data}
}

// Close releases the mmap (if any) and the underlying file handle.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	if err := unix.Munmap(s.data); err != nil {
		return errors.Wrap(err, "bytesource: munmap")
	}
	return s.file.Close()
}

// Size returns the total number of bytes in the source.
func (s *Source) Size() int64 {
	return int64(len(s.data))
}

// At returns a read-only view of n bytes starting at offset, or
// ErrOutOfRange if that range falls outside the file.
func (s *Source) At(offset int64, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+int64(n) > int64(len(s.data)) {
		return nil, ErrOutOfRange
	}
	return s.data[offset : offset+int64(n)], nil
}

// Window returns a read-only view of up to n bytes starting at offset,
// truncated to the available length when n would overrun the end of the
// file. Used by the scanner, which reads bounded pass windows and treats
// a short final window as valid (not an error).
func (s *Source) Window(offset int64, n int) []byte {
	if offset < 0 || offset >= int64(len(s.data)) {
		return nil
	}
	end := offset + int64(n)
	if end > int64(len(s.data)) {
		end = int64(len(s.data))
	}
	return s.data[offset:end]
}

// Chunks splits the full buffer into at most n contiguous slices of
// ceil(len/n) bytes each (the last one may be shorter, and fewer than n
// slices result when n does not divide the length evenly enough) whose
// concatenation reproduces the source bytes (spec.md §3 "Chunking
// state"), matching the ceil(len/n_parts) partitioning of
// utils.bytes_as_binary_lines in the original.
func (s *Source) Chunks(n int) [][]byte {
	if n <= 0 {
		n = 1
	}
	total := len(s.data)
	size := (total + n - 1) / n
	if size == 0 {
		size = total
	}
	var out [][]byte
	for i := 0; i < total; i += size {
		end := i + size
		if end > total {
			end = total
		}
		out = append(out, s.data[i:end])
	}
	return out
}
