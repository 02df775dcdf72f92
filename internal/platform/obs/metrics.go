package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps tests and tools free of registries.
type Metrics struct {
	HTTPRequests  *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Plans         *prometheus.CounterVec
	FilterRemoved *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heavyroute",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "heavyroute",
			Name:      "plan_stage_duration_seconds",
			Help:      "Duration of each route planning stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		Plans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heavyroute",
			Name:      "plans_total",
			Help:      "Route plans by outcome.",
		}, []string{"outcome"}),
		FilterRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "heavyroute",
			Name:      "filter_removed_edges_total",
			Help:      "Edges removed by the heavy-vehicle filter by reason.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) CountPlan(outcome string) {
	if m == nil {
		return
	}
	m.Plans.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CountFiltered(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FilterRemoved.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) CountRequest(route, method, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, code).Inc()
}
