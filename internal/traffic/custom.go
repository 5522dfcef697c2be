package traffic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// point is a single (time, tps) sample loaded from a pattern file.
type point struct {
	timeMs int64
	tps    float64
}

// Custom interpolates between sorted (time, tps) points loaded from a CSV
// pattern file. Before the first point it holds the first point's tps;
// after the last it holds the last point's tps.
type Custom struct {
	points []point
	maxTps float64
}

// LoadCustom reads a CSV pattern file with a header row. One column must
// match /time|^t$/ and one must match /tps|rate/, both case-insensitively.
// Rows that fail to parse as two floats are skipped with a warning written
// to warnf (nil-safe: pass nil to discard warnings). Time values are
// interpreted as seconds unless timeInMilliseconds is true. Returns an
// error if no column pair is found or zero valid points remain.
func LoadCustom(path string, timeInMilliseconds bool, warnf func(format string, args ...any)) (*Custom, error) {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pattern file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading pattern file header: %w", err)
	}

	timeCol, tpsCol := -1, -1
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		if timeCol == -1 && (strings.Contains(lower, "time") || lower == "t") {
			timeCol = i
		}
		if tpsCol == -1 && (strings.Contains(lower, "tps") || strings.Contains(lower, "rate")) {
			tpsCol = i
		}
	}
	if timeCol == -1 || tpsCol == -1 {
		return nil, fmt.Errorf("pattern file %s must have columns for time and tps rate", path)
	}

	var pts []point
	var maxTps float64
	rowNum := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			warnf("skipping malformed row %d in %s: %v", rowNum, path, err)
			continue
		}
		if timeCol >= len(row) || tpsCol >= len(row) {
			warnf("skipping short row %d in %s", rowNum, path)
			continue
		}
		t, err1 := strconv.ParseFloat(strings.TrimSpace(row[timeCol]), 64)
		tps, err2 := strconv.ParseFloat(strings.TrimSpace(row[tpsCol]), 64)
		if err1 != nil || err2 != nil {
			warnf("skipping invalid data point in %s at row %d: %v", path, rowNum, row)
			continue
		}
		var timeMs int64
		if timeInMilliseconds {
			timeMs = int64(t)
		} else {
			timeMs = int64(t * 1000)
		}
		pts = append(pts, point{timeMs: timeMs, tps: tps})
		if tps > maxTps {
			maxTps = tps
		}
	}

	if len(pts) == 0 {
		return nil, fmt.Errorf("no valid data points found in pattern file %s", path)
	}

	sort.Slice(pts, func(i, j int) bool { return pts[i].timeMs < pts[j].timeMs })

	return &Custom{points: pts, maxTps: maxTps}, nil
}

func (c *Custom) TpsAt(elapsedMs, totalMs int64) float64 {
	if len(c.points) == 0 {
		return 0
	}
	if elapsedMs < c.points[0].timeMs {
		return c.points[0].tps
	}
	last := c.points[len(c.points)-1]
	if elapsedMs >= last.timeMs {
		return last.tps
	}

	// Binary search for the last point with timeMs <= elapsedMs.
	lo, hi := 0, len(c.points)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.points[mid].timeMs <= elapsedMs {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	before := c.points[lo]
	after := c.points[lo+1]
	if after.timeMs == before.timeMs {
		return before.tps
	}
	ratio := float64(elapsedMs-before.timeMs) / float64(after.timeMs-before.timeMs)
	return before.tps + ratio*(after.tps-before.tps)
}

func (c *Custom) MaxTps() float64 { return c.maxTps }

// PointCount returns how many (time, tps) points were loaded from the
// pattern file.
func (c *Custom) PointCount() int { return len(c.points) }
