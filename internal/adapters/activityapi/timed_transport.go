package activityapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"activityboard/internal/adapters/http/perf"
)

// DefaultSlowCallMs is the default threshold for slow upstream call warnings.
const DefaultSlowCallMs = 300

// TimedTransport wraps a RoundTripper to log slow activities API calls
// and record every call to a perf collector.
type TimedTransport struct {
	next      http.RoundTripper
	collector *perf.Collector
	threshold float64
}

// Compile-time check that *TimedTransport satisfies http.RoundTripper.
var _ http.RoundTripper = (*TimedTransport)(nil)

// NewTimedTransport wraps next (http.DefaultTransport when nil).
// PRE: slowMs > 0, otherwise DefaultSlowCallMs applies; collector may be nil
func NewTimedTransport(next http.RoundTripper, collector *perf.Collector, slowMs int) *TimedTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if slowMs <= 0 {
		slowMs = DefaultSlowCallMs
	}
	return &TimedTransport{
		next:      next,
		collector: collector,
		threshold: float64(slowMs),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *TimedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	route := req.Method + " " + RoutePattern(req.URL.EscapedPath())

	switch {
	case err != nil:
		slog.Warn("upstream_call_failed", "route", route, "duration_ms", durationMs, "error", err)
	case durationMs >= t.threshold:
		slog.Warn("slow_upstream_call", "route", route, "status", status, "duration_ms", durationMs)
	default:
		slog.Debug("upstream_call", "route", route, "status", status, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       route,
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
	return resp, err
}

// RoutePattern replaces the activity name in an API path with {name},
// so timings of different activities aggregate together.
func RoutePattern(path string) string {
	trimmed := strings.Trim(path, "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 3 && parts[len(parts)-3] == "activities" {
		prefix := strings.Join(parts[:len(parts)-3], "/")
		route := "/activities/{name}/" + parts[len(parts)-1]
		if prefix != "" {
			route = "/" + prefix + route
		}
		return route
	}
	return path
}
