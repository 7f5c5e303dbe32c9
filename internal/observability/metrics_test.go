package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveGeneration(t *testing.T) {
	m := NewMetrics()
	m.ObserveGeneration("track", "gemini", "ok", time.Second)
	m.ObserveGeneration("track", "gemini", "ok", time.Second)
	m.ObserveGeneration("track", "gemini", "parse_error", time.Second)

	if got := testutil.ToFloat64(m.genRequests.WithLabelValues("track", "gemini", "ok")); got != 2 {
		t.Fatalf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.genRequests.WithLabelValues("track", "gemini", "parse_error")); got != 1 {
		t.Fatalf("parse_error count = %v, want 1", got)
	}
}

func TestObserveSweep(t *testing.T) {
	m := NewMetrics()
	m.ObserveSweep("otp", 3, nil)
	m.ObserveSweep("otp", 0, errors.New("x"))

	if got := testutil.ToFloat64(m.sweptRows.WithLabelValues("otp")); got != 3 {
		t.Fatalf("rows = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.sweeperRuns.WithLabelValues("otp", "error")); got != 1 {
		t.Fatalf("error runs = %v, want 1", got)
	}
}

func TestHandlerExposesAPIMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/v1/tracks", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `taskyn_http_requests_total{method="GET",route="/api/v1/tracks",status="200"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", rec.Body.String())
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveGeneration("a", "b", "c", time.Millisecond)
	m.ObserveSweep("j", 1, nil)
	m.APIInflightInc()
}
