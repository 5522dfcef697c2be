package execution

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kunkun/tpsgen/internal/breaker"
	"github.com/kunkun/tpsgen/internal/request"
	"github.com/kunkun/tpsgen/internal/traffic"
	"github.com/kunkun/tpsgen/internal/utils"
)

func newTestController(t *testing.T, url string, totalMs int64) *Controller {
	t.Helper()
	tpl := request.Template{
		Name:        "ping",
		Weight:      1,
		Method:      "GET",
		URLTemplate: url + "/ping",
	}
	gen, err := request.NewGenerator([]request.Template{tpl}, nil, utils.NewRandom(1), time.Now())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	c, err := New(Config{
		Name:                   "ping-test",
		TotalMs:                totalMs,
		ThreadPool:             ThreadPoolConfig{CoreSize: 2, MaxSize: 2, QueueSize: 4},
		Profile:                traffic.Stable{TargetTps: 50},
		Generator:              gen,
		HTTPClient:             &http.Client{Timeout: 5 * time.Second},
		ResourceMonitorEnabled: true,
		ResourceSampleInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func TestControllerExecuteRunsToCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestController(t, srv.URL, 100)
	res, err := c.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if c.State() != Stopped {
		t.Fatalf("expected Stopped, got %v", c.State())
	}
	if res.Counters.Total == 0 {
		t.Fatal("expected at least one request to be submitted")
	}
	if res.Counters.Success == 0 {
		t.Fatal("expected at least one success")
	}
}

func TestControllerRejectsSecondExecute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestController(t, srv.URL, 50)
	if _, err := c.Execute(context.Background()); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	if _, err := c.Execute(context.Background()); err == nil {
		t.Fatal("expected second Execute to fail")
	}
}

func TestControllerStopEndsRunEarly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestController(t, srv.URL, 10*time.Second.Milliseconds())
	go func() {
		time.Sleep(30 * time.Millisecond)
		c.Stop()
	}()

	start := time.Now()
	if _, err := c.Execute(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("expected Stop to end the run well before the configured duration")
	}
}

func TestControllerTripsCircuitBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tpl := request.Template{Name: "fail", Weight: 1, Method: "GET", URLTemplate: srv.URL + "/fail"}
	gen, err := request.NewGenerator([]request.Template{tpl}, nil, utils.NewRandom(1), time.Now())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	cb, err := breaker.New(10, 0.3)
	if err != nil {
		t.Fatalf("new breaker: %v", err)
	}

	c, err := New(Config{
		Name:       "breaker-test",
		TotalMs:    5000,
		ThreadPool: ThreadPoolConfig{CoreSize: 4, MaxSize: 4, QueueSize: 8},
		Profile:    traffic.Stable{TargetTps: 200},
		Generator:  gen,
		Breaker:    cb,
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	start := time.Now()
	res, err := c.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("expected the breaker trip to end the run well before the configured duration")
	}
	if cb.AllowRequest() {
		t.Fatal("expected breaker to be open against an always-failing server")
	}
	if res.Counters.Success != 0 {
		t.Fatalf("expected zero successes, got %d", res.Counters.Success)
	}
	if cb.OpenSince().IsZero() {
		t.Fatal("expected openSince to be stamped once the breaker tripped")
	}
}

func TestControllerClassifiesRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tpl := request.Template{Name: "slow", Weight: 1, Method: "GET", URLTemplate: srv.URL + "/slow"}
	gen, err := request.NewGenerator([]request.Template{tpl}, nil, utils.NewRandom(1), time.Now())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	c, err := New(Config{
		Name:           "timeout-test",
		TotalMs:        20,
		RequestTimeout: 20 * time.Millisecond,
		ThreadPool:     ThreadPoolConfig{CoreSize: 1, MaxSize: 1, QueueSize: 1},
		Profile:        traffic.Stable{TargetTps: 50},
		Generator:      gen,
		HTTPClient:     &http.Client{},
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	res, err := c.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Counters.Timeout == 0 {
		t.Fatal("expected at least one timed-out request")
	}
	if res.Counters.Timeout > res.Counters.Failure {
		t.Fatal("expected timeout count to be included in failure count")
	}
}
