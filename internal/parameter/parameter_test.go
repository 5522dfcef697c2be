package parameter

import (
	"os"
	"strconv"
	"testing"

	"github.com/kunkun/tpsgen/internal/utils"
)

func TestUniformIntRange(t *testing.T) {
	rng := utils.NewRandom(1)
	src, err := NewUniformInt(1, 100, rng)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		v, err := src.Next()
		if err != nil {
			t.Fatal(err)
		}
		n := atoi(t, v)
		if n < 1 || n > 100 {
			t.Fatalf("value %d out of range [1,100]", n)
		}
	}
}

func TestUniformIntRejectsInvertedRange(t *testing.T) {
	if _, err := NewUniformInt(100, 1, utils.NewRandom(1)); err == nil {
		t.Fatal("expected error for min > max")
	}
}

func TestTruncatedNormalAlwaysInRange(t *testing.T) {
	rng := utils.NewRandom(7)
	src, err := NewTruncatedNormal(50, 10, 0, 100, rng)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		v, err := src.Next()
		if err != nil {
			t.Fatal(err)
		}
		f := atof(t, v)
		if f < 0 || f >= 100 {
			t.Fatalf("value %v out of range [0,100)", f)
		}
	}
}

func TestTruncatedNormalRejectsBadConfig(t *testing.T) {
	if _, err := NewTruncatedNormal(50, -1, 0, 100, utils.NewRandom(1)); err == nil {
		t.Fatal("expected error for non-positive stddev")
	}
	if _, err := NewTruncatedNormal(50, 10, 100, 0, utils.NewRandom(1)); err == nil {
		t.Fatal("expected error for min >= max")
	}
}

func TestFileSourceRoundRobin(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "values-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("A\nB\nC\n")
	f.Close()

	src, err := NewFileSource(FileSourceConfig{Path: f.Name()}, utils.NewRandom(1))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"A", "B", "C", "A", "B", "C", "A"}
	for i, w := range want {
		v, err := src.Next()
		if err != nil {
			t.Fatal(err)
		}
		if v != w {
			t.Errorf("call %d: got %q, want %q", i, v, w)
		}
	}
}

func TestFileSourceSkipsBlankLines(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "values-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("A\n\n  \nB\n")
	f.Close()

	src, err := NewFileSource(FileSourceConfig{Path: f.Name()}, utils.NewRandom(1))
	if err != nil {
		t.Fatal(err)
	}
	if src.ValueCount() != 2 {
		t.Fatalf("expected 2 values, got %d", src.ValueCount())
	}
}

func TestFileSourceEmptyFileIsFatal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "values-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := NewFileSource(FileSourceConfig{Path: f.Name()}, utils.NewRandom(1)); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestFileSourceCSVByColumn(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "values-*.csv")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("id,name\n1,alice\n2,bob\n")
	f.Close()

	src, err := NewFileSource(FileSourceConfig{Path: f.Name(), Column: "name"}, utils.NewRandom(1))
	if err != nil {
		t.Fatal(err)
	}
	v1, _ := src.Next()
	v2, _ := src.Next()
	if v1 != "alice" || v2 != "bob" {
		t.Fatalf("got %q, %q, want alice, bob", v1, v2)
	}
}

func TestRandomSelectionAndString(t *testing.T) {
	rng := utils.NewRandom(3)
	sel, err := NewRandomSelection([]string{"x", "y", "z"}, rng)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := sel.Next()
	if v != "x" && v != "y" && v != "z" {
		t.Fatalf("unexpected value %q", v)
	}

	str := NewRandomString(8, rng)
	s, _ := str.Next()
	if len(s) != 8 {
		t.Fatalf("expected length 8, got %d", len(s))
	}
}

func TestFactoryDispatch(t *testing.T) {
	rng := utils.NewRandom(1)

	if _, err := NewFromSpec(Spec{Type: "RANDOM", Range: []int{1, 10}}, rng); err != nil {
		t.Errorf("uniform via factory: %v", err)
	}
	if _, err := NewFromSpec(Spec{Type: "random", Distribution: "normal", Mean: 5, StdDev: 1, Min: 0, Max: 10}, rng); err != nil {
		t.Errorf("normal via factory: %v", err)
	}
	if _, err := NewFromSpec(Spec{Type: "database"}, rng); err == nil {
		t.Error("expected error for unsupported type")
	}
	if _, err := NewFromSpec(Spec{Type: "file", Path: ""}, rng); err == nil {
		t.Error("expected error for file source without path")
	}
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("parsing int %q: %v", s, err)
	}
	return n
}

func atof(t *testing.T, s string) float64 {
	t.Helper()
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("parsing float %q: %v", s, err)
	}
	return n
}
