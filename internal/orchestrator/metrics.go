package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fyrsmithlabs/contentgate/internal/content"
)

// Metrics holds the Prometheus collectors of the validation pipeline.
// A nil *Metrics records nothing.
type Metrics struct {
	// GradesTotal counts graded records.
	// Labels: status (PASS, FAIL)
	GradesTotal *prometheus.CounterVec

	// IssuesTotal counts reported issues.
	// Labels: severity, category
	IssuesTotal *prometheus.CounterVec

	// PhaseDuration tracks how long each phase takes.
	// Labels: phase (schema, audit, quality)
	PhaseDuration *prometheus.HistogramVec

	// DimensionScore tracks the distribution of aggregated dimension scores.
	// Labels: dimension
	DimensionScore *prometheus.HistogramVec
}

// NewMetrics creates the pipeline collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GradesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "contentgate",
				Name:      "grades_total",
				Help:      "Total number of graded records by gate status",
			},
			[]string{"status"},
		),
		IssuesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "contentgate",
				Name:      "issues_total",
				Help:      "Total number of issues reported by severity and category",
			},
			[]string{"severity", "category"},
		),
		PhaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "contentgate",
				Name:      "phase_duration_seconds",
				Help:      "Duration of validation phases in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"phase"},
		),
		DimensionScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "contentgate",
				Name:      "dimension_score",
				Help:      "Distribution of aggregated quality dimension scores",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"dimension"},
		),
	}
}

func (m *Metrics) observePhase(r content.ValidationResult) {
	if m == nil || !r.Ran() {
		return
	}
	m.PhaseDuration.WithLabelValues(string(r.Phase)).Observe(r.Duration.Seconds())
}

func (m *Metrics) observeGrade(g *content.QualityGrade) {
	if m == nil {
		return
	}
	m.GradesTotal.WithLabelValues(string(g.Status)).Inc()
	for _, i := range g.Issues() {
		m.IssuesTotal.WithLabelValues(string(i.Severity), string(i.Category)).Inc()
	}
	for dim, d := range g.Dimensions {
		m.DimensionScore.WithLabelValues(string(dim)).Observe(d.Score)
	}
}
