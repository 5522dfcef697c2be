// Package request implements request template substitution and weighted
// template selection: turning a ParameterBag into a materialized
// *http.Request.
package request

import (
	"net/http"
	"strings"

	"github.com/kunkun/tpsgen/internal/apperrors"
)

// Template is an immutable HTTP request skeleton with ${name} placeholders
// in the URL, headers, and body.
type Template struct {
	Name         string
	Weight       int
	Method       string
	URLTemplate  string
	Headers      map[string]string
	BodyTemplate string
}

// Substitute replaces every occurrence of ${name} in s with its value
// from params, iterating params in no particular order (replacements are
// literal and non-overlapping regardless of order since each placeholder
// names a distinct key). Placeholders with no matching key are left
// literal.
func Substitute(s string, params map[string]string) string {
	if s == "" {
		return s
	}
	result := s
	for name, value := range params {
		result = strings.ReplaceAll(result, "${"+name+"}", value)
	}
	return result
}

// Build materializes an *http.Request from the template and parameter bag.
// GET/DELETE never carry a body; POST/PUT always carry the (possibly
// empty) materialized body; any other method carries a body only if the
// template specifies one.
func (t Template) Build(params map[string]string) (*http.Request, error) {
	url := Substitute(t.URLTemplate, params)
	method := strings.ToUpper(t.Method)

	var bodyStr string
	if t.BodyTemplate != "" {
		bodyStr = Substitute(t.BodyTemplate, params)
	}

	var body *strings.Reader
	switch method {
	case "GET", "DELETE":
		body = strings.NewReader("")
	default:
		body = strings.NewReader(bodyStr)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, apperrors.ErrRequestGenerationFailed
	}

	for name, value := range t.Headers {
		req.Header.Set(name, Substitute(value, params))
	}

	return req, nil
}
