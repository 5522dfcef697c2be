package parameter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/kunkun/tpsgen/internal/utils"
)

// DefaultMaxFileLines bounds how many values a file source will hold in
// memory; excess lines are truncated with a warning. Matches the original
// MAX_PARAMETER_FILE_LINES default.
const DefaultMaxFileLines = 100_000

// FileSource loads values once at construction (CSV by column name/index,
// or one value per line for any other extension) and never rereads the
// file. It serves both round-robin and random selection.
type FileSource struct {
	path     string
	values   []string
	random   bool
	rng      *utils.Random
	idx      atomic.Int64
}

// FileSourceConfig configures loading.
type FileSourceConfig struct {
	Path     string
	Column   string // CSV column name; empty selects column 0
	Random   bool   // false = round-robin
	MaxLines int    // 0 uses DefaultMaxFileLines
	WarnF    func(format string, args ...any)
}

// NewFileSource loads and validates the file eagerly. An empty file (zero
// usable values) is a fatal construction error.
func NewFileSource(cfg FileSourceConfig, rng *utils.Random) (*FileSource, error) {
	maxLines := cfg.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultMaxFileLines
	}
	warnf := cfg.WarnF
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	var values []string
	var err error
	if strings.EqualFold(filepath.Ext(cfg.Path), ".csv") {
		values, err = loadCSVValues(cfg.Path, cfg.Column, maxLines, warnf)
	} else {
		values, err = loadTextValues(cfg.Path, maxLines, warnf)
	}
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no values loaded from file parameter source %q", cfg.Path)
	}

	return &FileSource{path: cfg.Path, values: values, random: cfg.Random, rng: rng}, nil
}

func loadCSVValues(path, column string, maxLines int, warnf func(string, ...any)) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parameter file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading parameter file header %s: %w", path, err)
	}

	colIdx := 0
	if column != "" {
		colIdx = -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), column) {
				colIdx = i
				break
			}
		}
		if colIdx == -1 {
			return nil, fmt.Errorf("parameter file %s has no column named %q", path, column)
		}
	}

	var values []string
	for {
		if len(values) >= maxLines {
			warnf("parameter file %q has more than %d records, truncating", path, maxLines)
			break
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if colIdx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[colIdx])
		if v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

func loadTextValues(path string, maxLines int, warnf func(string, ...any)) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening parameter file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var values []string
	for scanner.Scan() {
		if len(values) >= maxLines {
			warnf("parameter file %q has more than %d lines, truncating", path, maxLines)
			break
		}
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading parameter file %s: %w", path, err)
	}
	return values, nil
}

// Next returns the next value: uniform random, or round-robin via an
// overflow-safe atomic compare-and-swap that stores (i+1) mod the value
// count, so the index always stays in [0, count).
func (f *FileSource) Next() (string, error) {
	n := int64(len(f.values))
	if f.random {
		return f.values[f.rng.IntN(int(n))], nil
	}
	for {
		i := f.idx.Load()
		if f.idx.CompareAndSwap(i, (i+1)%n) {
			return f.values[i], nil
		}
	}
}

// ValueCount returns how many values were loaded.
func (f *FileSource) ValueCount() int { return len(f.values) }
