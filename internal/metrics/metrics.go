// Package metrics exposes Prometheus collectors for marker operations.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	markerLookupsTotal      *prometheus.CounterVec
	markerInsertsTotal      prometheus.Counter
	markerTableCreatesTotal prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		markerLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marker_lookups_total",
				Help: "Total number of marker existence checks, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		markerInsertsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "marker_inserts_total",
				Help: "Total number of marker rows recorded.",
			},
		)

		markerTableCreatesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "marker_table_creates_total",
				Help: "Total number of times the marker table was actually created.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Observer reports marker operations to the Prometheus collectors. It
// satisfies the marker.Observer interface.
type Observer struct{}

// NewObserver initializes the collectors and returns an Observer.
func NewObserver() Observer {
	Init()
	return Observer{}
}

// MarkerLookup increments the lookup counter for the given outcome.
func (Observer) MarkerLookup(found bool) {
	if markerLookupsTotal == nil {
		return
	}
	outcome := "miss"
	if found {
		outcome = "hit"
	}
	markerLookupsTotal.WithLabelValues(outcome).Inc()
}

// MarkerInserted increments the insert counter.
func (Observer) MarkerInserted() {
	if markerInsertsTotal == nil {
		return
	}
	markerInsertsTotal.Inc()
}

// MarkerTableCreated increments the table-creation counter.
func (Observer) MarkerTableCreated() {
	if markerTableCreatesTotal == nil {
		return
	}
	markerTableCreatesTotal.Inc()
}
