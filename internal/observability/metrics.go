// Package observability holds the Prometheus collectors of the board.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_board",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Calls to the activities API by operation and outcome.",
	}, []string{"operation", "outcome"})
	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_board",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the activities API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	catalogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_board",
		Subsystem: "catalog",
		Name:      "activities",
		Help:      "Number of activities in the last loaded catalog.",
	})
	catalogLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_board",
		Subsystem: "catalog",
		Name:      "last_loaded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful catalog load.",
	})
	boardRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_board",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Board requests by route and status class.",
	}, []string{"route", "status"})
	boardDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_board",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of board requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	bannersShown = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_board",
		Subsystem: "ui",
		Name:      "banners_shown_total",
		Help:      "Outcome banners shown, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(upstreamRequests, upstreamDuration, boardRequests, boardDuration, catalogSize, catalogLoaded, bannersShown)
}

// Upstream outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
)

// RecordUpstreamCall counts one activities API call and observes its latency.
func RecordUpstreamCall(operation, outcome string, d time.Duration) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordCatalogLoaded updates the catalog gauges after a successful load.
func RecordCatalogLoaded(size int, at time.Time) {
	catalogSize.Set(float64(size))
	if !at.IsZero() {
		catalogLoaded.Set(float64(at.Unix()))
	}
}

// RecordBanner counts a banner of the given kind.
func RecordBanner(kind string) {
	bannersShown.WithLabelValues(kind).Inc()
}

// RecordBoardRequest counts one board request under its route label and observes its latency.
// Statuses are grouped by class ("2xx", "3xx", ...).
func RecordBoardRequest(route string, status int, d time.Duration) {
	boardRequests.WithLabelValues(route, StatusClass(status)).Inc()
	boardDuration.WithLabelValues(route).Observe(d.Seconds())
}

// StatusClass returns "2xx" for 200..299 and so on; anything outside 100..599 is "other".
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}
