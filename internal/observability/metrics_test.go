package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 303: "3xx", 404: "4xx", 502: "5xx", 0: "other", 700: "other"}
	for status, want := range tests {
		if got := StatusClass(status); got != want {
			t.Errorf("StatusClass(%d) = %q, want %q", status, got, want)
		}
	}
}

// boardRequestCount reads the request counter for one route and status class from the default registry.
func boardRequestCount(t *testing.T, route, class string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "activity_board_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == route && labels["status"] == class {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRecordBoardRequest(t *testing.T) {
	before := boardRequestCount(t, "POST /signup", "3xx")

	RecordBoardRequest("POST /signup", 303, 12*time.Millisecond)
	RecordBoardRequest("POST /signup", 303, 8*time.Millisecond)

	if got := boardRequestCount(t, "POST /signup", "3xx") - before; got != 2 {
		t.Errorf("counter increased by %v, want 2", got)
	}
}
