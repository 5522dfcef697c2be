package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/kunkun/tpsgen/internal/apperrors"
	"github.com/kunkun/tpsgen/internal/breaker"
	"github.com/kunkun/tpsgen/internal/config"
	"github.com/kunkun/tpsgen/internal/execution"
	"github.com/kunkun/tpsgen/internal/export"
	"github.com/kunkun/tpsgen/internal/parameter"
	"github.com/kunkun/tpsgen/internal/request"
	"github.com/kunkun/tpsgen/internal/traffic"
	"github.com/kunkun/tpsgen/internal/ui"
	"github.com/kunkun/tpsgen/internal/utils"
	"github.com/kunkun/tpsgen/internal/validator"
)

var runCmd = &cobra.Command{
	Use:   "run <config-path> [output-dir]",
	Short: "Run a load test from a JSON configuration document",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	outputDir := "./output"
	if len(args) > 1 {
		outputDir = args[1]
	}

	u := ui.New()
	if noColor {
		u.SetNoColor(true)
	}

	spec, err := config.Load(configPath)
	if err != nil {
		fmt.Println(u.Error(err.Error()))
		Exit(1)
		return nil
	}
	if err := spec.Validate(); err != nil {
		fmt.Println(u.Error(err.Error()))
		Exit(1)
		return nil
	}

	controller, err := buildController(spec, u)
	if err != nil {
		fmt.Println(u.Error(err.Error()))
		Exit(1)
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Println(u.Header(spec.Name))
	result, err := controller.Execute(ctx)
	if err != nil {
		fmt.Println(u.Error(err.Error()))
		Exit(1)
		return nil
	}

	primaryName := spec.Metrics.OutputFile
	if primaryName == "" {
		timestamp := result.StartedAt.Format("20060102_150405")
		primaryName = fmt.Sprintf("%s_%s", spec.Name, timestamp)
	}
	if path, err := export.WritePrimaryMetrics(outputDir, primaryName, result); err != nil {
		fmt.Println(u.Warning(fmt.Sprintf("failed to write %s: %v", primaryName, err)))
	} else {
		fmt.Println(u.Success("wrote " + path))
	}
	if path, err := export.WriteTpsSamples(outputDir, result.StartedAt.UnixMilli(), result.TpsSamples); err != nil {
		fmt.Println(u.Warning(fmt.Sprintf("failed to write tps_samples.csv: %v", err)))
	} else {
		fmt.Println(u.Success("wrote " + path))
	}
	if path, err := export.WriteResourceSnapshots(outputDir, result.StartedAt.UnixMilli(), result.ResourceSnapshots); err != nil {
		fmt.Println(u.Warning(fmt.Sprintf("failed to write resource_snapshots.csv: %v", err)))
	} else {
		fmt.Println(u.Success("wrote " + path))
	}

	export.PrintConsoleSummary(u, result)
	return nil
}

func buildController(spec *config.TestSpec, u *ui.UI) (*execution.Controller, error) {
	if spec.TrafficPattern.Type == "custom" && spec.TrafficPattern.PatternFile != "" {
		u.PrintPatternFileLoading(spec.TrafficPattern.PatternFile, 0)
	}
	profile, err := traffic.NewFromSpec(traffic.Spec{
		Type:               spec.TrafficPattern.Type,
		TargetTps:          spec.TrafficPattern.TargetTps,
		StartTps:           spec.TrafficPattern.StartTps,
		SpikeTps:           spec.TrafficPattern.SpikeTps,
		SpikeStartTime:     spec.TrafficPattern.SpikeStartTime,
		SpikeDuration:      spec.TrafficPattern.SpikeDuration,
		RampDuration:       spec.TrafficPattern.RampDuration,
		PatternFile:        spec.TrafficPattern.PatternFile,
		TimeInMilliseconds: spec.TrafficPattern.TimeInMilliseconds,
		WarnF:              func(format string, a ...any) { fmt.Println(u.Warning(fmt.Sprintf(format, a...))) },
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}
	if custom, ok := profile.(*traffic.Custom); ok {
		u.PrintPatternFileLoading(spec.TrafficPattern.PatternFile, custom.PointCount())
	}

	rng := utils.NewRandom(0)

	sources := make(map[string]parameter.Source, len(spec.ParameterSources))
	for name, ps := range spec.ParameterSources {
		sourceStart := time.Now()
		src, err := parameter.NewFromSpec(parameter.Spec{
			Type:         ps.Type,
			Distribution: ps.Distribution,
			Range:        ps.Range,
			Min:          ps.Min,
			Max:          ps.Max,
			Mean:         ps.Mean,
			StdDev:       ps.StdDev,
			Path:         ps.Path,
			Column:       ps.Column,
			Selection:    ps.Selection,
			WarnF:        func(format string, a ...any) { fmt.Println(u.Warning(fmt.Sprintf(format, a...))) },
		}, rng)
		if ps.Type == "file" {
			var count int64
			if fs, ok := src.(*parameter.FileSource); ok {
				count = int64(fs.ValueCount())
			}
			u.PrintParameterSourceLoadResult(name, count, time.Since(sourceStart), err)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parameter source %q: %v", apperrors.ErrConfigInvalid, name, err)
		}
		sources[name] = src
	}

	templates := make([]request.Template, len(spec.RequestTemplates))
	for i, t := range spec.RequestTemplates {
		url := t.URLTemplate
		if spec.TargetServiceUrl != "" {
			url = spec.TargetServiceUrl + url
		}
		templates[i] = request.Template{
			Name:         t.Name,
			Weight:       t.Weight,
			Method:       t.Method,
			URLTemplate:  url,
			Headers:      t.Headers,
			BodyTemplate: t.BodyTemplate,
		}
	}

	generator, err := request.NewGenerator(templates, sources, rng, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}

	var cb *breaker.Breaker
	if spec.CircuitBreaker.Enabled {
		cb, err = breaker.New(spec.CircuitBreaker.WindowSize, spec.CircuitBreaker.ErrorThreshold)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
		}
	}

	return execution.New(execution.Config{
		Name:           spec.Name,
		TotalMs:        spec.TestDuration.Milliseconds(),
		RequestTimeout: spec.RequestTimeout,
		ThreadPool: execution.ThreadPoolConfig{
			CoreSize:      spec.ThreadPool.CoreSize,
			MaxSize:       spec.ThreadPool.MaxSize,
			QueueSize:     spec.ThreadPool.QueueSize,
			KeepAliveTime: spec.ThreadPool.KeepAliveTime,
		},
		Profile:                 profile,
		Generator:               generator,
		Validator:               validator.New(),
		Breaker:                 cb,
		HTTPClient:              &http.Client{},
		Logf:                    func(format string, a ...any) { fmt.Println(u.Muted(fmt.Sprintf(format, a...))) },
		ResourceMonitorEnabled:  spec.Metrics.ResourceMonitoring.Enabled,
		ResourceSampleInterval:  spec.Metrics.ResourceMonitoring.SampleInterval,
		ResponseTimePercentiles: spec.Metrics.ResponseTimePercentiles,
	})
}
