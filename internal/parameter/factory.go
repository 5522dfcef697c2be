package parameter

import (
	"fmt"
	"strings"

	"github.com/kunkun/tpsgen/internal/utils"
)

// Spec is the declarative configuration for one named parameter source,
// mirroring the JSON parameterSources map entries.
type Spec struct {
	Type        string // "random" | "file"
	Distribution string // "uniform" | "normal", random only
	Range       []int  // [min, max], random/uniform only
	Min, Max    float64
	Mean        float64
	StdDev      float64
	Path        string // file only
	Column      string // file only
	Selection   string // "random" | "round-robin", file only
	MaxLines    int
	WarnF       func(format string, args ...any)
}

// NewFromSpec builds a Source from a Spec, matching the original
// ParameterSourceFactory's dispatch and validation rules.
func NewFromSpec(spec Spec, rng *utils.Random) (Source, error) {
	typ := strings.ToLower(strings.TrimSpace(spec.Type))
	switch typ {
	case "random":
		return newRandomSource(spec, rng)
	case "file":
		return newFileSourceFromSpec(spec, rng)
	case "":
		return nil, fmt.Errorf("parameter source type cannot be empty")
	default:
		return nil, fmt.Errorf("unsupported parameter source type: %s", spec.Type)
	}
}

func newRandomSource(spec Spec, rng *utils.Random) (Source, error) {
	dist := strings.ToLower(strings.TrimSpace(spec.Distribution))
	switch dist {
	case "", "uniform":
		min, max := rangeBounds(spec)
		return NewUniformInt(min, max, rng)
	case "normal":
		return NewTruncatedNormal(spec.Mean, spec.StdDev, spec.Min, spec.Max, rng)
	default:
		return nil, fmt.Errorf("unsupported distribution type: %s", spec.Distribution)
	}
}

func rangeBounds(spec Spec) (int, int) {
	if len(spec.Range) >= 2 {
		return spec.Range[0], spec.Range[1]
	}
	return int(spec.Min), int(spec.Max)
}

func newFileSourceFromSpec(spec Spec, rng *utils.Random) (Source, error) {
	if strings.TrimSpace(spec.Path) == "" {
		return nil, fmt.Errorf("file path must be specified for file parameter source")
	}
	return NewFileSource(FileSourceConfig{
		Path:     spec.Path,
		Column:   spec.Column,
		Random:   strings.EqualFold(spec.Selection, "random"),
		MaxLines: spec.MaxLines,
		WarnF:    spec.WarnF,
	}, rng)
}
