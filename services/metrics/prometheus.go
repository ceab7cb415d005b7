// Package metricsvc exposes roster-build metrics via prometheus.
package metricsvc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hapiedu/hapi/core/risk"
)

type PrometheusRecorder struct {
	rosterBuilds    prometheus.Counter
	rosterSize      prometheus.Histogram
	rosterDuration  prometheus.Histogram
	studentsFlagged *prometheus.CounterVec
}

var _ risk.Recorder = (*PrometheusRecorder)(nil)

func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		rosterBuilds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hapi_roster_builds_total",
			Help: "Total number of at-risk roster builds",
		}),
		rosterSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hapi_roster_size",
			Help:    "Number of flagged students per roster build",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		rosterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hapi_roster_build_duration_seconds",
			Help:    "At-risk roster build duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		studentsFlagged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hapi_students_flagged_total",
			Help: "Total number of students flagged, by severity",
		}, []string{"severity"}),
	}
}

func (m *PrometheusRecorder) RosterBuilt(teacherID string, size int, elapsed time.Duration) {
	m.rosterBuilds.Inc()
	m.rosterSize.Observe(float64(size))
	m.rosterDuration.Observe(elapsed.Seconds())
}

func (m *PrometheusRecorder) StudentFlagged(severity risk.Severity) {
	m.studentsFlagged.WithLabelValues(string(severity)).Inc()
}
