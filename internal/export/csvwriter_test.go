package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(CSVWriterConfig{
		OutputDir: dir,
		Filename:  "sample",
		Headers:   []string{"a", "b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow([]string{"1", "2"}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow([]string{"3", "4"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if w.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", w.RowCount())
	}

	data, err := os.ReadFile(filepath.Join(dir, "sample.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines: %q", len(lines), string(data))
	}
	if lines[0] != "a,b" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
}

func TestCSVWriterRejectsWriteAfterClose(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(CSVWriterConfig{OutputDir: dir, Filename: "sample"})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow([]string{"x"}); err == nil {
		t.Fatal("expected error writing to closed writer")
	}
}
