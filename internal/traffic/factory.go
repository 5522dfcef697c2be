package traffic

import (
	"fmt"
	"strings"
)

// Spec is the declarative configuration for one trafficPattern document,
// mirroring the JSON schema's type-tagged union.
type Spec struct {
	Type               string // "stable" | "rampup" | "spike" | "custom"
	TargetTps          float64
	StartTps           float64
	SpikeTps           float64
	SpikeStartTime     int64 // ms
	SpikeDuration      int64 // ms
	RampDuration       int64 // ms
	PatternFile        string
	TimeInMilliseconds bool
	WarnF              func(format string, args ...any)
}

// NewFromSpec builds a Profile from a Spec, matching the original
// TrafficPatternFactory's dispatch and validation rules.
func NewFromSpec(spec Spec) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Type)) {
	case "stable":
		if spec.TargetTps <= 0 {
			return nil, fmt.Errorf("traffic pattern stable: targetTps must be positive")
		}
		return Stable{TargetTps: spec.TargetTps}, nil
	case "rampup":
		if spec.TargetTps <= 0 {
			return nil, fmt.Errorf("traffic pattern rampUp: targetTps must be positive")
		}
		if spec.RampDuration <= 0 {
			return nil, fmt.Errorf("traffic pattern rampUp: rampDuration must be positive")
		}
		return Ramp{StartTps: spec.StartTps, TargetTps: spec.TargetTps, RampMillis: spec.RampDuration}, nil
	case "spike":
		if spec.TargetTps <= 0 {
			return nil, fmt.Errorf("traffic pattern spike: targetTps must be positive")
		}
		if spec.SpikeDuration <= 0 {
			return nil, fmt.Errorf("traffic pattern spike: spikeDuration must be positive")
		}
		return Spike{
			BaseTps:          spec.TargetTps,
			SpikeTps:         spec.SpikeTps,
			SpikeStartMillis: spec.SpikeStartTime,
			SpikeDurationMs:  spec.SpikeDuration,
		}, nil
	case "custom":
		if strings.TrimSpace(spec.PatternFile) == "" {
			return nil, fmt.Errorf("traffic pattern custom: patternFile must be specified")
		}
		return LoadCustom(spec.PatternFile, spec.TimeInMilliseconds, spec.WarnF)
	case "":
		return nil, fmt.Errorf("traffic pattern type cannot be empty")
	default:
		return nil, fmt.Errorf("unsupported traffic pattern type: %s", spec.Type)
	}
}
