package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/content/fixtures"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

func TestAggregateField(t *testing.T) {
	tests := []struct {
		name   string
		method string
		values []float64
		want   float64
	}{
		{"min", requirements.AggregateMin, []float64{80, 40, 95}, 40},
		{"mean", requirements.AggregateMean, []float64{80, 40, 90}, 70},
		{"unknown method falls back to min", "median", []float64{80, 40}, 40},
		{"single value", requirements.AggregateMean, []float64{55}, 55},
		{"no values", requirements.AggregateMin, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, aggregateField(tt.method, tt.values), 1e-9)
		})
	}
}

func TestGate_FieldAggregation(t *testing.T) {
	rec := fixtures.GoodMaterial()
	rec.Text["summary"] = fixtures.ContaminatedDescription

	t.Run("min takes the weakest field", func(t *testing.T) {
		grade := validate(t, newPipeline(t), rec, LifecycleOptions{}, content.PhaseQuality)
		assert.Equal(t, 0.0, grade.Dimensions[content.DimensionVoice].Score)

		quality, _ := grade.Result(content.PhaseQuality)
		assert.Len(t, quality.Scores, 8)
	})

	t.Run("mean averages fields", func(t *testing.T) {
		doc := requirements.DefaultMap()
		requirements.SetPath(doc, "scoring.field_aggregation", "mean")
		p, err := New(requirements.MustFromMap(doc), WithClock(frozen))
		require.NoError(t, err)

		grade := validate(t, p, rec, LifecycleOptions{}, content.PhaseQuality)
		voice := grade.Dimensions[content.DimensionVoice]
		assert.Equal(t, 50.0, voice.Score)
		assert.False(t, voice.Passed)
		assert.InDelta(t, 85.0, grade.OverallScore, 1e-9)
	})
}

func TestGate_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		status content.GradeStatus
	}{
		{"all dimensions at 100", 100, content.GradePass},
		{"exactly at the highest minimum", 70, content.GradePass},
		{"below overall minimum", 69.9, content.GradeFail},
		{"zero", 0, content.GradeFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t, WithScorers(stubScorers(tt.value)...))
			grade := validate(t, p, fixtures.GoodMaterial(), LifecycleOptions{})
			assert.InDelta(t, tt.value, grade.OverallScore, 1e-9)
			assert.Equal(t, tt.status, grade.Status)
		})
	}

	t.Run("one weak dimension", func(t *testing.T) {
		scorers := stubScorers(100)
		scorers[3] = stubScorer{dim: content.DimensionStructural, value: 59}
		p := newPipeline(t, WithScorers(scorers...))

		grade := validate(t, p, fixtures.GoodMaterial(), LifecycleOptions{})
		assert.Greater(t, grade.OverallScore, grade.MinimumOverall)
		assert.Equal(t, content.GradeFail, grade.Status)
		assert.False(t, grade.Dimensions[content.DimensionStructural].Passed)

		quality, _ := grade.Result(content.PhaseQuality)
		assert.Equal(t, content.StatusFail, quality.Status)
		assert.Equal(t, []string{"Raise structural_quality from 59.0 to at least 60.0."}, grade.Recommendations)
	})
}

func TestGate_AuditThreshold(t *testing.T) {
	rec := fixtures.GoodMaterial()
	rec.Fields["laser_power"] = content.Field{Value: content.NumberValue(500), Unit: "W"}

	grade := validate(t, newPipeline(t), rec, LifecycleOptions{})
	audit, _ := grade.Result(content.PhaseAudit)
	require.Len(t, audit.Issues, 1)
	assert.Equal(t, content.SeverityMinor, audit.Issues[0].Severity)
	assert.Equal(t, content.StatusPass, audit.Status)
	assert.Equal(t, content.GradePass, grade.Status, "minor issues do not fail the default gate")

	doc := requirements.DefaultMap()
	requirements.SetPath(doc, "phases.audit.fail_at", "minor")
	strict, err := New(requirements.MustFromMap(doc), WithClock(frozen))
	require.NoError(t, err)

	grade = validate(t, strict, rec, LifecycleOptions{})
	assert.Equal(t, content.GradeFail, grade.Status)
	assert.Contains(t, grade.Recommendations, "Address the audit issues at or above minor severity.")
}
