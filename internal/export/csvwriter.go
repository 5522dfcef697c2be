// Package export writes end-of-run artifacts: per-second metrics, TPS
// samples, resource snapshots, and a styled console summary.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CSVWriter is a streaming, memory-efficient CSV writer for run output
// files. It uses buffered I/O and writes rows immediately to minimize
// memory usage.
type CSVWriter struct {
	file     *os.File
	buffer   *bufio.Writer
	writer   *csv.Writer
	mu       sync.Mutex
	rowCount int64
	closed   bool
}

// CSVWriterConfig configures a new writer.
type CSVWriterConfig struct {
	OutputDir  string
	Filename   string // without extension, e.g. "tps_samples"
	Headers    []string
	BufferSize int // default 64KB
}

// NewCSVWriter creates the output file immediately and writes headers.
func NewCSVWriter(cfg CSVWriterConfig) (*CSVWriter, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}

	path := filepath.Join(cfg.OutputDir, cfg.Filename+".csv")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file %s: %w", path, err)
	}

	buffer := bufio.NewWriterSize(file, bufSize)
	writer := csv.NewWriter(buffer)

	cw := &CSVWriter{file: file, buffer: buffer, writer: writer}

	if len(cfg.Headers) > 0 {
		if err := writer.Write(cfg.Headers); err != nil {
			cw.file.Close()
			return nil, fmt.Errorf("writing headers: %w", err)
		}
	}

	return cw, nil
}

// WriteRow writes a single row. Safe for concurrent use.
func (w *CSVWriter) WriteRow(row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	w.rowCount++
	return nil
}

// Flush forces buffered data to disk.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("csv flush error: %w", err)
	}
	return w.buffer.Flush()
}

// Close flushes remaining data and closes the file.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("csv flush error: %w", err)
	}
	if err := w.buffer.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("buffer flush error: %w", err)
	}
	return w.file.Close()
}

// RowCount returns the number of data rows written (excludes header).
func (w *CSVWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowCount
}

// Path returns the full path to the output file.
func (w *CSVWriter) Path() string {
	return w.file.Name()
}

// FormatTime formats a time.Time for CSV output.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000Z07:00")
}

// FormatFloat64 formats a float64 for CSV with fixed precision.
func FormatFloat64(f float64) string {
	return fmt.Sprintf("%.3f", f)
}

// FormatInt64 formats an int64 for CSV.
func FormatInt64(n int64) string {
	return fmt.Sprintf("%d", n)
}

// FormatInt formats an int for CSV.
func FormatInt(n int) string {
	return fmt.Sprintf("%d", n)
}
