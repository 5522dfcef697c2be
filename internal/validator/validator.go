// Package validator implements a composable HTTP response validation
// pipeline. When no rules are configured, success is defined purely by
// the 2xx status range.
package validator

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Failure describes one failed rule.
type Failure struct {
	Rule   string
	Detail string
}

// Rule is a predicate over a response's status, headers, and body.
type Rule interface {
	Check(statusCode int, header http.Header, body []byte) *Failure
}

// Validator runs an ordered chain of rules.
type Validator struct {
	rules []Rule
}

// New builds a validator from the given rules, evaluated in order.
func New(rules ...Rule) *Validator {
	return &Validator{rules: rules}
}

// Validate runs every rule and collects all failures; ok is true only
// when the rule chain is non-empty and every rule passed, or when the
// chain is empty and the status code is in [200,300).
func (v *Validator) Validate(statusCode int, header http.Header, body []byte) (bool, []Failure) {
	if len(v.rules) == 0 {
		return statusCode >= 200 && statusCode < 300, nil
	}
	var failures []Failure
	for _, r := range v.rules {
		if f := r.Check(statusCode, header, body); f != nil {
			failures = append(failures, *f)
		}
	}
	return len(failures) == 0, failures
}

type statusRange struct{ min, max int }

// StatusRange passes when statusCode is in [min, max] inclusive.
func StatusRange(min, max int) Rule { return statusRange{min, max} }

func (s statusRange) Check(statusCode int, _ http.Header, _ []byte) *Failure {
	if statusCode < s.min || statusCode > s.max {
		return &Failure{Rule: "status_range", Detail: fmt.Sprintf("status %d outside [%d,%d]", statusCode, s.min, s.max)}
	}
	return nil
}

type bodyContains struct{ substr string }

// BodyContains passes when the body contains substr.
func BodyContains(substr string) Rule { return bodyContains{substr} }

func (b bodyContains) Check(_ int, _ http.Header, body []byte) *Failure {
	if !strings.Contains(string(body), b.substr) {
		return &Failure{Rule: "body_contains", Detail: fmt.Sprintf("body does not contain %q", b.substr)}
	}
	return nil
}

type bodyMatches struct{ re *regexp.Regexp }

// BodyMatches passes when the body matches the given regular expression.
func BodyMatches(pattern string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling body match pattern: %w", err)
	}
	return bodyMatches{re}, nil
}

func (b bodyMatches) Check(_ int, _ http.Header, body []byte) *Failure {
	if !b.re.Match(body) {
		return &Failure{Rule: "body_matches", Detail: fmt.Sprintf("body does not match %q", b.re.String())}
	}
	return nil
}

type headerEquals struct{ name, value string }

// HeaderEquals passes when header name has exactly value.
func HeaderEquals(name, value string) Rule { return headerEquals{name, value} }

func (h headerEquals) Check(_ int, header http.Header, _ []byte) *Failure {
	if got := header.Get(h.name); got != h.value {
		return &Failure{Rule: "header_equals", Detail: fmt.Sprintf("header %s = %q, want %q", h.name, got, h.value)}
	}
	return nil
}

type sizeRange struct{ min, max int }

// SizeRange passes when len(body) is in [min, max] inclusive.
func SizeRange(min, max int) Rule { return sizeRange{min, max} }

func (s sizeRange) Check(_ int, _ http.Header, body []byte) *Failure {
	n := len(body)
	if n < s.min || n > s.max {
		return &Failure{Rule: "size_range", Detail: fmt.Sprintf("body size %d outside [%d,%d]", n, s.min, s.max)}
	}
	return nil
}

type custom struct {
	name string
	fn   func(statusCode int, header http.Header, body []byte) error
}

// Custom wraps an arbitrary closure as a rule; a non-nil error becomes the
// failure detail.
func Custom(name string, fn func(statusCode int, header http.Header, body []byte) error) Rule {
	return custom{name, fn}
}

func (c custom) Check(statusCode int, header http.Header, body []byte) *Failure {
	if err := c.fn(statusCode, header, body); err != nil {
		return &Failure{Rule: c.name, Detail: err.Error()}
	}
	return nil
}
