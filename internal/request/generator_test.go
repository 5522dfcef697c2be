package request

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/kunkun/tpsgen/internal/apperrors"
	"github.com/kunkun/tpsgen/internal/parameter"
	"github.com/kunkun/tpsgen/internal/utils"
)

type constSource string

func (c constSource) Next() (string, error) { return string(c), nil }

type errSource struct{}

func (errSource) Next() (string, error) { return "", errors.New("source exhausted") }

func TestSubstituteLeavesUnmatchedPlaceholdersLiteral(t *testing.T) {
	out := Substitute("/users/${id}/orders/${missing}", map[string]string{"id": "42"})
	if out != "/users/42/orders/${missing}" {
		t.Fatalf("got %q", out)
	}
}

func TestTemplateBuildMethodBodyMapping(t *testing.T) {
	cases := []struct {
		method   string
		body     string
		wantBody string
	}{
		{"GET", "ignored", ""},
		{"DELETE", "ignored", ""},
		{"POST", "hello ${name}", "hello world"},
		{"PUT", "hello ${name}", "hello world"},
		{"PATCH", "hello ${name}", "hello world"},
	}
	for _, c := range cases {
		tpl := Template{Method: c.method, URLTemplate: "http://example.com/x", BodyTemplate: c.body}
		req, err := tpl.Build(map[string]string{"name": "world"})
		if err != nil {
			t.Fatalf("%s: %v", c.method, err)
		}
		b, _ := io.ReadAll(req.Body)
		if string(b) != c.wantBody {
			t.Errorf("%s: got body %q, want %q", c.method, b, c.wantBody)
		}
	}
}

func TestTemplateBuildHeadersSubstituted(t *testing.T) {
	tpl := Template{
		Method:      "GET",
		URLTemplate: "http://example.com/x",
		Headers:     map[string]string{"X-User": "${user}"},
	}
	req, err := tpl.Build(map[string]string{"user": "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if got := req.Header.Get("X-User"); got != "alice" {
		t.Fatalf("got header %q", got)
	}
}

func TestGeneratorWeightedSelectionConverges(t *testing.T) {
	templates := []Template{
		{Name: "a", Weight: 70, Method: "GET", URLTemplate: "http://x/a"},
		{Name: "b", Weight: 30, Method: "GET", URLTemplate: "http://x/b"},
	}
	gen, err := NewGenerator(templates, nil, utils.NewRandom(42), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	counts := map[string]int{}
	const n = 10000
	for i := 0; i < n; i++ {
		req, err := gen.Next()
		if err != nil {
			t.Fatal(err)
		}
		counts[req.URL.Path]++
	}

	fracA := float64(counts["/a"]) / n
	if fracA < 0.68 || fracA > 0.72 {
		t.Fatalf("weighted selection drifted: /a fraction = %v, want ~0.70", fracA)
	}
}

func TestGeneratorSingleTemplateBypassesRNG(t *testing.T) {
	templates := []Template{{Name: "only", Weight: 1, Method: "GET", URLTemplate: "http://x/only"}}
	gen, err := NewGenerator(templates, nil, utils.NewRandom(1), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		req, err := gen.Next()
		if err != nil {
			t.Fatal(err)
		}
		if req.URL.Path != "/only" {
			t.Fatalf("got %q", req.URL.Path)
		}
	}
}

func TestGeneratorUserSourceOverridesReservedKey(t *testing.T) {
	templates := []Template{{Name: "t", Weight: 1, Method: "GET", URLTemplate: "http://x/${requestId}"}}
	sources := map[string]parameter.Source{"requestId": constSource("fixed-id")}
	gen, err := NewGenerator(templates, sources, utils.NewRandom(1), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	req, err := gen.Next()
	if err != nil {
		t.Fatal(err)
	}
	if req.URL.Path != "/fixed-id" {
		t.Fatalf("user-sourced parameter did not win collision: got %q", req.URL.Path)
	}
}

func TestGeneratorWrapsParameterSourceFailure(t *testing.T) {
	templates := []Template{{Name: "t", Weight: 1, Method: "GET", URLTemplate: "http://x/${v}"}}
	sources := map[string]parameter.Source{"v": errSource{}}
	gen, err := NewGenerator(templates, sources, utils.NewRandom(1), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gen.Next(); !errors.Is(err, apperrors.ErrRequestGenerationFailed) {
		t.Fatalf("expected ErrRequestGenerationFailed, got %v", err)
	}
}

func TestGeneratorRejectsNonPositiveWeight(t *testing.T) {
	templates := []Template{{Name: "t", Weight: 0, Method: "GET", URLTemplate: "http://x"}}
	if _, err := NewGenerator(templates, nil, utils.NewRandom(1), time.Now()); err == nil {
		t.Fatal("expected error for non-positive weight")
	}
}

func TestGeneratorRejectsEmptyTemplates(t *testing.T) {
	if _, err := NewGenerator(nil, nil, utils.NewRandom(1), time.Now()); err == nil {
		t.Fatal("expected error for empty template list")
	}
}
