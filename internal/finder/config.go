package finder

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/kshedden/binfinder/internal/model"
)

// Config mirrors spec.md §6's configuration table, plus the ambient knobs
// every session in the teacher's style carries (LogDir, TempDir,
// CPUProfile) even though this in-memory design does not spill to disk.
type Config struct {

	// Base chunk-size target; also sets TestChunkSize = 5*MinLengthData.
	MinLengthData int

	// Initial worker count; may be decreased during partitioning.
	NumberOfThreads int

	// Scaled to 2*8+1 = 17 as the outer bound on byte-shift and
	// stride-gap search.
	ValueInRow int

	// Restricts the hypothesis space to these tags. Empty means the
	// full catalogue.
	DataTypes []model.Tag

	// Restricts the endian hypothesis space. Empty means both.
	Endians []model.Endian

	// Directory for log output. Empty means stderr.
	LogDir string

	// Reserved for a future spill-to-disk growth path; unused by this
	// in-memory design, kept for parity with the teacher's Config shape.
	TempDir string

	// Starts a github.com/pkg/profile CPU profile around the CLI run.
	CPUProfile bool
}

// DefaultConfig returns the spec.md §6 defaults.
func DefaultConfig() Config {
	return Config{
		MinLengthData:   1000,
		NumberOfThreads: 5,
		ValueInRow:      2,
	}
}

// ReadConfig decodes a JSON config file over the defaults, the same
// pattern as utils.ReadConfig in the teacher, except failures are
// returned (a ConfigError per spec.md §7) rather than panicking.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	fid, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "finder: open config %s", path)
	}
	defer fid.Close()

	dec := json.NewDecoder(fid)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "finder: decode config %s", path)
	}
	return cfg, nil
}

// Validate checks the ConfigError-class invariants of spec.md §7.
func (c Config) Validate() error {
	if c.NumberOfThreads <= 0 {
		return errors.New("finder: number_of_threads must be > 0")
	}
	if c.MinLengthData <= 0 {
		return errors.New("finder: min_length_data must be > 0")
	}
	return nil
}

func (c Config) valueInRow() int {
	if c.ValueInRow <= 0 {
		return 2
	}
	return c.ValueInRow
}

func (c Config) endians() []model.Endian {
	if len(c.Endians) == 0 {
		return []model.Endian{model.Little, model.Big}
	}
	return c.Endians
}
