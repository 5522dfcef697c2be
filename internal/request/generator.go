package request

import (
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/kunkun/tpsgen/internal/apperrors"
	"github.com/kunkun/tpsgen/internal/parameter"
	"github.com/kunkun/tpsgen/internal/utils"
)

// Generator selects a weighted template and materializes a request from
// it, substituting reserved values and named parameter sources.
type Generator struct {
	templates []Template
	weights   []int
	sources   map[string]parameter.Source
	rng       *utils.Random
	seq       atomic.Int64
	startedAt time.Time
}

// NewGenerator validates weights once at construction, matching the
// original RequestGenerator constructor.
func NewGenerator(templates []Template, sources map[string]parameter.Source, rng *utils.Random, startedAt time.Time) (*Generator, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("request generator: at least one template is required")
	}
	weights := make([]int, len(templates))
	for i, tpl := range templates {
		if tpl.Weight <= 0 {
			return nil, fmt.Errorf("request generator: template %q has non-positive weight %d", tpl.Name, tpl.Weight)
		}
		weights[i] = tpl.Weight
	}
	return &Generator{
		templates: templates,
		weights:   weights,
		sources:   sources,
		rng:       rng,
		startedAt: startedAt,
	}, nil
}

// selectTemplate returns an index into g.templates, bypassing the RNG
// entirely when only one template is configured.
func (g *Generator) selectTemplate() int {
	if len(g.templates) == 1 {
		return 0
	}
	return g.rng.WeightedPick(g.weights)
}

// Next builds the parameter bag for one request and materializes it.
// Reserved values (requestId, timestamp, elapsedTime) are inserted first;
// named parameter source values are inserted after and win on collision,
// matching the original generateParameters() insertion order.
func (g *Generator) Next() (*http.Request, error) {
	tpl := g.templates[g.selectTemplate()]

	requestID := g.seq.Add(1)
	now := time.Now()

	params := map[string]string{
		"requestId":   strconv.FormatInt(requestID, 10),
		"timestamp":   strconv.FormatInt(now.UnixMilli(), 10),
		"elapsedTime": strconv.FormatInt(now.Sub(g.startedAt).Milliseconds(), 10),
	}
	for name, src := range g.sources {
		v, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: parameter source %q: %v", apperrors.ErrRequestGenerationFailed, name, err)
		}
		params[name] = v
	}

	req, err := tpl.Build(params)
	if err != nil {
		return nil, fmt.Errorf("%w: template %q: %v", apperrors.ErrRequestGenerationFailed, tpl.Name, err)
	}
	return req, nil
}
