package data

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoadCSV reads a headed CSV file into a frame.
func LoadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "data: open csv")
	}
	defer file.Close()
	f, err := ReadCSV(bufio.NewReader(file))
	return f, errors.Wrapf(err, "data: %s", path)
}

// ReadCSV parses a CSV stream whose first record is the header. Empty cells
// become NaN. A column containing any other non-numeric cell is label
// encoded: its distinct values, sorted, map to 0..k-1.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFrame
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	header = append([]string(nil), header...)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	raw := make([][]string, len(header))
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				return nil, errors.Wrapf(ErrRaggedRow, "line %d", line)
			}
			return nil, errors.Wrapf(err, "line %d", line)
		}
		for j, s := range rec {
			raw[j] = append(raw[j], strings.TrimSpace(s))
		}
	}
	if len(raw) == 0 || len(raw[0]) == 0 {
		return nil, ErrEmptyFrame
	}

	cols := make([][]float64, len(header))
	cats := map[string][]string{}
	for j, cells := range raw {
		if num, ok := parseNumeric(cells); ok {
			cols[j] = num
			continue
		}
		codes, levels := labelEncode(cells)
		cols[j] = codes
		cats[header[j]] = levels
	}

	f, err := NewFrame(header, cols)
	if err != nil {
		return nil, err
	}
	if len(cats) > 0 {
		f.categories = cats
	}
	return f, nil
}

func parseNumeric(cells []string) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, s := range cells {
		if s == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func labelEncode(cells []string) ([]float64, []string) {
	seen := map[string]struct{}{}
	for _, s := range cells {
		seen[s] = struct{}{}
	}
	levels := make([]string, 0, len(seen))
	for s := range seen {
		levels = append(levels, s)
	}
	sort.Strings(levels)
	code := make(map[string]int, len(levels))
	for i, s := range levels {
		code[s] = i
	}
	out := make([]float64, len(cells))
	for i, s := range cells {
		out[i] = float64(code[s])
	}
	return out, levels
}

// WriteCSV writes the frame with a header row. Label-encoded columns are
// written back as their text values.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.names); err != nil {
		return errors.Wrap(err, "data: write header")
	}
	rec := make([]string, len(f.names))
	for i := 0; i < f.n; i++ {
		for j, name := range f.names {
			v := f.cols[name][i]
			if levels := f.categories[name]; levels != nil && int(v) >= 0 && int(v) < len(levels) {
				rec[j] = levels[int(v)]
				continue
			}
			if math.IsNaN(v) {
				rec[j] = ""
				continue
			}
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "data: write row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "data: flush csv")
}

// SaveCSV writes the frame to path.
func SaveCSV(path string, f *Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "data: create csv")
	}
	if err := WriteCSV(file, f); err != nil {
		file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "data: close csv")
}
