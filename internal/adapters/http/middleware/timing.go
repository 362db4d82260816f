package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"activityboard/internal/adapters/http/perf"
	"activityboard/internal/observability"
)

// DefaultSlowRequestMs is the default threshold for slow request warnings.
const DefaultSlowRequestMs = 200

// RouteOther labels requests that match no board route.
const RouteOther = "other"

// boardRoutes maps "METHOD /path" to the label recorded for it.
var boardRoutes = map[string]string{
	"GET /":                     "GET /",
	"GET /api/board":            "GET /api/board",
	"POST /signup":              "POST /signup",
	"POST /participants/remove": "POST /participants/remove",
	"POST /refresh":             "POST /refresh",
	"GET /debug/perf":           "GET /debug/perf",
}

// BoardRoute labels a request by the board route it targets.
// Query strings never reach the label, so every filter combination of the
// board page shares "GET /"; unknown paths collapse into RouteOther.
func BoardRoute(method, path string) string {
	if label, ok := boardRoutes[method+" "+path]; ok {
		return label
	}
	return RouteOther
}

// isAssetOrScrape reports requests that are not page or action traffic.
func isAssetOrScrape(path string) bool {
	return strings.HasPrefix(path, "/static/") || path == "/metrics" || path == "/favicon.ico"
}

// responseRecorder remembers the status a handler answered with.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *responseRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	return rec.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *responseRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// Timing returns middleware that times board requests.
// Each request is logged under its BoardRoute label (DEBUG, or WARN at or above slowMs),
// counted in the board request metrics and, when collector is non-nil, recorded for /debug/perf.
// Static assets and metric scrapes pass through untimed.
// A non-positive slowMs uses DefaultSlowRequestMs.
func Timing(collector *perf.Collector, slowMs int) func(http.Handler) http.Handler {
	if slowMs <= 0 {
		slowMs = DefaultSlowRequestMs
	}
	threshold := time.Duration(slowMs) * time.Millisecond

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAssetOrScrape(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			route := BoardRoute(r.Method, r.URL.Path)
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0

				attrs := []any{"route", route, "status", rec.status, "duration_ms", durationMs}
				if route == RouteOther {
					attrs = append(attrs, "path", r.URL.Path)
				}
				if route == "GET /" && r.URL.RawQuery != "" {
					attrs = append(attrs, "filtered", true)
				}
				if elapsed >= threshold {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}

				observability.RecordBoardRequest(route, rec.status, elapsed)
				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       route,
						StatusCode: rec.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
