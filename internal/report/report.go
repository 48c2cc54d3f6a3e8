// Package report is the JSON report serializer of spec.md §6: it
// translates between model.Streak and the wire format external tools
// consume, and offers a snappy-compressed variant alongside the plain one
// (paired the way muscato_screen.harvest writes both plain and .sz
// output).
package report

import (
	"encoding/json"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/kshedden/binfinder/internal/model"
)

// wireDataType is the "data_type" object of spec.md §6's report format.
type wireDataType struct {
	PriorityIndex int    `json:"priority_index"`
	FormatterChar string `json:"formatter_char"`
	LengthInByte  int    `json:"length_in_byte"`
	EndianBitmask uint64 `json:"endian_bitmask"`
}

// wireStreak is one element of the report's "results" array.
type wireStreak struct {
	Offset       int64       `json:"offset"`
	BytesStep    int64       `json:"bytes_step"`
	DataType     wireDataType `json:"data_type"`
	Endian       string      `json:"endian"`
	QualityIndex float64     `json:"quality_index"`
	Streak       [4]int64    `json:"streak"`
	Values       []float64   `json:"values"`
}

type wireReport struct {
	Results []wireStreak `json:"results"`
}

// formatterChars maps a catalogue tag to the struct.unpack-style format
// character the original report used, preserved here for wire
// compatibility with the original JSON shape.
var formatterChars = map[model.Tag]string{
	model.TagF64: "d",
	model.TagI64: "q",
	model.TagU64: "Q",
	model.TagF32: "f",
	model.TagI32: "i",
	model.TagU32: "I",
	model.TagI16: "h",
	model.TagU16: "H",
	model.TagI8:  "b",
	model.TagU8:  "B",
}

var tagsByFormatterChar = func() map[string]model.Tag {
	out := make(map[string]model.Tag, len(formatterChars))
	for tag, ch := range formatterChars {
		out[ch] = tag
	}
	return out
}()

func toWireStreak(s model.Streak) wireStreak {
	values := s.Values
	if values == nil {
		values = []float64{}
	}
	return wireStreak{
		Offset:    s.Offset,
		BytesStep: s.BytesStep,
		DataType: wireDataType{
			PriorityIndex: s.ElementType.Priority,
			FormatterChar: formatterChars[s.ElementType.Tag],
			LengthInByte:  s.ElementType.WidthBytes,
			EndianBitmask: s.ElementType.EndianBitmask,
		},
		Endian:       s.Endian.String(),
		QualityIndex: s.QualityIndex,
		Streak:       [4]int64{s.Range.Start, s.Range.Stop, int64(s.ElementType.WidthBytes), s.BytesStep},
		Values:       values,
	}
}

func fromWireStreak(w wireStreak, catalogByTag func(model.Tag) (model.ElementType, bool)) (model.Streak, error) {
	tag, ok := tagsByFormatterChar[w.DataType.FormatterChar]
	if !ok {
		return model.Streak{}, errors.Errorf("report: unknown formatter_char %q", w.DataType.FormatterChar)
	}
	et, ok := catalogByTag(tag)
	if !ok {
		return model.Streak{}, errors.Errorf("report: unknown tag %q", tag)
	}
	endian, ok := model.ParseEndian(w.Endian)
	if !ok {
		return model.Streak{}, errors.Errorf("report: unknown endian %q", w.Endian)
	}

	stride := int64(w.Streak[2]) + w.Streak[3]
	return model.Streak{
		Offset:       w.Offset,
		BytesStep:    w.BytesStep,
		ElementType:  et,
		Endian:       endian,
		QualityIndex: w.QualityIndex,
		Range:        model.Range{Start: w.Streak[0], Stop: w.Streak[1], Step: stride},
		Values:       w.Values,
	}, nil
}

// Marshal encodes streaks into spec.md §6's JSON report format.
func Marshal(streaks []model.Streak) ([]byte, error) {
	w := wireReport{Results: make([]wireStreak, len(streaks))}
	for i, s := range streaks {
		w.Results[i] = toWireStreak(s)
	}
	out, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "report: marshal")
	}
	return out, nil
}

// Unmarshal decodes spec.md §6's JSON report format back into streaks.
// catalogByTag resolves each wire formatter_char's tag to the full
// ElementType (ordinarily catalog.ByTag).
func Unmarshal(data []byte, catalogByTag func(model.Tag) (model.ElementType, bool)) ([]model.Streak, error) {
	var w wireReport
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "report: unmarshal")
	}
	out := make([]model.Streak, 0, len(w.Results))
	for _, ws := range w.Results {
		s, err := fromWireStreak(ws, catalogByTag)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Write serializes streaks to path as plain JSON.
func Write(path string, streaks []model.Streak) error {
	data, err := Marshal(streaks)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "report: write %s", path)
	}
	return nil
}

// WriteCompressed serializes streaks to path as snappy-compressed JSON,
// the same pairing muscato_screen.harvest uses for its bmatch*.txt.sz
// output files.
func WriteCompressed(path string, streaks []model.Streak) error {
	data, err := Marshal(streaks)
	if err != nil {
		return err
	}

	fid, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "report: create %s", path)
	}
	defer fid.Close()

	w := snappy.NewBufferedWriter(fid)
	if _, err := w.Write(data); err != nil {
		return errors.Wrapf(err, "report: compress %s", path)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "report: close %s", path)
	}
	return nil
}

// Load reads and decodes a plain JSON report.
func Load(path string, catalogByTag func(model.Tag) (model.ElementType, bool)) ([]model.Streak, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "report: read %s", path)
	}
	return Unmarshal(data, catalogByTag)
}

// LoadCompressed reads and decodes a snappy-compressed JSON report.
func LoadCompressed(path string, catalogByTag func(model.Tag) (model.ElementType, bool)) ([]model.Streak, error) {
	fid, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "report: open %s", path)
	}
	defer fid.Close()

	r := snappy.NewReader(fid)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "report: decompress %s", path)
	}
	return Unmarshal(data, catalogByTag)
}
