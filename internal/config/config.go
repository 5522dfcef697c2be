// Package config loads and validates the JSON document that describes one
// load test run: target service, traffic pattern, request templates,
// parameter sources, thread pool sizing, metrics options, and circuit
// breaker settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kunkun/tpsgen/internal/apperrors"
)

// TestSpec is the root configuration document for one load test run.
type TestSpec struct {
	Name              string             `mapstructure:"name"`
	TargetServiceUrl  string             `mapstructure:"targetServiceUrl"`
	TestDuration      time.Duration      `mapstructure:"testDuration"`
	RequestTimeout    time.Duration      `mapstructure:"requestTimeout"`
	TrafficPattern    TrafficPatternSpec `mapstructure:"trafficPattern"`
	ThreadPool        ThreadPoolSpec     `mapstructure:"threadPool"`
	RequestTemplates  []RequestTemplateSpec         `mapstructure:"requestTemplates"`
	ParameterSources  map[string]ParameterSourceSpec `mapstructure:"parameterSources"`
	Metrics           MetricsSpec        `mapstructure:"metrics"`
	CircuitBreaker    CircuitBreakerSpec `mapstructure:"circuitBreaker"`
}

// TrafficPatternSpec configures the shape of the target TPS over time.
type TrafficPatternSpec struct {
	Type               string  `mapstructure:"type"`
	TargetTps          float64 `mapstructure:"targetTps"`
	StartTps           float64 `mapstructure:"startTps"`
	SpikeTps           float64 `mapstructure:"spikeTps"`
	SpikeStartTime     int64   `mapstructure:"spikeStartTime"`
	SpikeDuration      int64   `mapstructure:"spikeDuration"`
	RampDuration       int64   `mapstructure:"rampDuration"`
	PatternFile        string  `mapstructure:"patternFile"`
	TimeInMilliseconds bool    `mapstructure:"timeInMilliseconds"`
}

// ThreadPoolSpec sizes the bounded worker pool.
type ThreadPoolSpec struct {
	CoreSize      int           `mapstructure:"coreSize"`
	MaxSize       int           `mapstructure:"maxSize"`
	QueueSize     int           `mapstructure:"queueSize"`
	KeepAliveTime time.Duration `mapstructure:"keepAliveTime"`
}

// RequestTemplateSpec is one weighted request skeleton.
type RequestTemplateSpec struct {
	Name         string            `mapstructure:"name"`
	Weight       int               `mapstructure:"weight"`
	Method       string            `mapstructure:"method"`
	URLTemplate  string            `mapstructure:"urlTemplate"`
	Headers      map[string]string `mapstructure:"headers"`
	BodyTemplate string            `mapstructure:"bodyTemplate"`
}

// ParameterSourceSpec configures one named parameter source.
type ParameterSourceSpec struct {
	Type         string    `mapstructure:"type"`
	Distribution string    `mapstructure:"distribution"`
	Range        []int     `mapstructure:"range"`
	Min          float64   `mapstructure:"min"`
	Max          float64   `mapstructure:"max"`
	Mean         float64   `mapstructure:"mean"`
	StdDev       float64   `mapstructure:"stddev"`
	Path         string    `mapstructure:"path"`
	Column       string    `mapstructure:"column"`
	Selection    string    `mapstructure:"selection"`
}

// MetricsSpec configures the metrics surface.
type MetricsSpec struct {
	ResponseTimePercentiles []int               `mapstructure:"responseTimePercentiles"`
	OutputFile              string              `mapstructure:"outputFile"`
	ResourceMonitoring      ResourceMonitorSpec `mapstructure:"resourceMonitoring"`
}

// ResourceMonitorSpec toggles and tunes the background resource sampler.
type ResourceMonitorSpec struct {
	Enabled        bool          `mapstructure:"enabled"`
	SampleInterval time.Duration `mapstructure:"sampleInterval"`
}

// CircuitBreakerSpec configures the sliding-window error-rate breaker.
type CircuitBreakerSpec struct {
	Enabled        bool    `mapstructure:"enabled"`
	ErrorThreshold float64 `mapstructure:"errorThreshold"`
	WindowSize     int     `mapstructure:"windowSize"`
}

// Load reads a JSON config document from path into a TestSpec, applying
// DefaultSpec() for every field the document omits.
func Load(path string) (*TestSpec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	spec := DefaultSpec()
	if err := v.Unmarshal(spec); err != nil {
		return nil, fmt.Errorf("unmarshalling config %s: %w", path, err)
	}
	return spec, nil
}

// Validate checks the document for internal consistency, collecting every
// violation rather than failing on the first.
func (s *TestSpec) Validate() error {
	var errs []string

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name must not be blank")
	}
	if s.TestDuration <= 0 {
		errs = append(errs, "testDuration must be positive")
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, "requestTimeout must be positive")
	}

	switch strings.ToLower(strings.TrimSpace(s.TrafficPattern.Type)) {
	case "stable", "rampup", "spike", "custom":
	case "":
		errs = append(errs, "trafficPattern.type must not be blank")
	default:
		errs = append(errs, fmt.Sprintf("trafficPattern.type %q is not one of stable, rampUp, spike, custom", s.TrafficPattern.Type))
	}

	if s.ThreadPool.CoreSize < 1 {
		errs = append(errs, "threadPool.coreSize must be >= 1")
	}
	if s.ThreadPool.MaxSize < s.ThreadPool.CoreSize {
		errs = append(errs, "threadPool.maxSize must be >= coreSize")
	}
	if s.ThreadPool.QueueSize < 0 {
		errs = append(errs, "threadPool.queueSize must be >= 0")
	}

	if len(s.RequestTemplates) == 0 {
		errs = append(errs, "requestTemplates must not be empty")
	}
	for i, tpl := range s.RequestTemplates {
		if strings.TrimSpace(tpl.Name) == "" {
			errs = append(errs, fmt.Sprintf("requestTemplates[%d].name must not be blank", i))
		}
		if tpl.Weight < 1 {
			errs = append(errs, fmt.Sprintf("requestTemplates[%d].weight must be >= 1", i))
		}
		if strings.TrimSpace(tpl.Method) == "" {
			errs = append(errs, fmt.Sprintf("requestTemplates[%d].method must not be blank", i))
		}
		if strings.TrimSpace(tpl.URLTemplate) == "" {
			errs = append(errs, fmt.Sprintf("requestTemplates[%d].urlTemplate must not be blank", i))
		}
	}

	if s.CircuitBreaker.Enabled {
		if s.CircuitBreaker.ErrorThreshold < 0 || s.CircuitBreaker.ErrorThreshold > 1 {
			errs = append(errs, "circuitBreaker.errorThreshold must be between 0.0 and 1.0")
		}
		if s.CircuitBreaker.WindowSize < 1 {
			errs = append(errs, "circuitBreaker.windowSize must be >= 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", apperrors.ErrConfigInvalid, strings.Join(errs, "\n  - "))
	}
	return nil
}
