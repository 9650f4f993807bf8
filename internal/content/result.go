package content

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// Dimension names one axis of text quality.
type Dimension string

const (
	DimensionVoice      Dimension = "voice_authenticity"
	DimensionHumanLike  Dimension = "human_likeness"
	DimensionTechnical  Dimension = "technical_accuracy"
	DimensionStructural Dimension = "structural_quality"
)

// AllDimensions returns every quality dimension in report order.
func AllDimensions() []Dimension {
	return []Dimension{DimensionVoice, DimensionHumanLike, DimensionTechnical, DimensionStructural}
}

// QualityScore is one scorer's verdict on one text field.
type QualityScore struct {
	Dimension    Dimension `json:"dimension"`
	Field        string    `json:"field"`
	Value        float64   `json:"value"`
	Observations []string  `json:"observations,omitempty"`
}

// NewQualityScore builds a score clamped to [0,100]. NaN becomes 0.
func NewQualityScore(dim Dimension, field string, value float64, observations ...string) QualityScore {
	return QualityScore{
		Dimension:    dim,
		Field:        field,
		Value:        ClampScore(value),
		Observations: observations,
	}
}

// ClampScore bounds a score to [0,100].
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Phase identifies a stage of the validation lifecycle.
type Phase string

const (
	PhaseSchema  Phase = "schema"
	PhaseAudit   Phase = "audit"
	PhaseQuality Phase = "quality"
)

// AllPhases returns every phase in execution order.
func AllPhases() []Phase {
	return []Phase{PhaseSchema, PhaseAudit, PhaseQuality}
}

// PhaseStatus is the outcome of one phase.
type PhaseStatus string

const (
	StatusPass    PhaseStatus = "pass"
	StatusFail    PhaseStatus = "fail"
	StatusNotRun  PhaseStatus = "not_run"
	StatusSkipped PhaseStatus = "skipped"
)

// ValidationResult is the output of one phase.
type ValidationResult struct {
	Phase    Phase          `json:"phase"`
	Status   PhaseStatus    `json:"status"`
	Issues   []Issue        `json:"issues"`
	Scores   []QualityScore `json:"scores,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Ran reports whether the phase executed.
func (r ValidationResult) Ran() bool {
	return r.Status == StatusPass || r.Status == StatusFail
}

// StatusFor derives a pass/fail status from issues and a failure threshold.
func StatusFor(issues []Issue, failAt Severity) PhaseStatus {
	for _, i := range issues {
		if i.Severity.AtLeast(failAt) {
			return StatusFail
		}
	}
	return StatusPass
}

// GradeStatus is the final gate decision.
type GradeStatus string

const (
	GradePass GradeStatus = "PASS"
	GradeFail GradeStatus = "FAIL"
)

// DimensionGrade is the aggregated score of one dimension against its minimum.
type DimensionGrade struct {
	Score   float64 `json:"score"`
	Minimum float64 `json:"minimum"`
	Weight  float64 `json:"weight"`
	Passed  bool    `json:"passed"`
}

// AppliedFix records one declarative correction made during auto-fix.
type AppliedFix struct {
	Kind   FixKind `json:"kind"`
	Field  string  `json:"field"`
	Phase  Phase   `json:"phase"`
	Detail string  `json:"detail"`
}

// QualityGrade is the terminal artifact of a lifecycle run.
type QualityGrade struct {
	RecordID        string                       `json:"record_id"`
	Status          GradeStatus                  `json:"status"`
	Scored          bool                         `json:"scored"`
	OverallScore    float64                      `json:"overall_score"`
	MinimumOverall  float64                      `json:"minimum_overall"`
	Dimensions      map[Dimension]DimensionGrade `json:"dimensions,omitempty"`
	Recommendations []string                     `json:"recommendations,omitempty"`
	Results         []ValidationResult           `json:"results"`
	Fixes           []AppliedFix                 `json:"fixes,omitempty"`
}

// Issues returns every issue across all phases in phase order.
func (g *QualityGrade) Issues() []Issue {
	var all []Issue
	for _, r := range g.Results {
		all = append(all, r.Issues...)
	}
	return all
}

// Result returns the result for a phase.
func (g *QualityGrade) Result(p Phase) (ValidationResult, bool) {
	for _, r := range g.Results {
		if r.Phase == p {
			return r, true
		}
	}
	return ValidationResult{}, false
}

// Passed reports whether the gate passed.
func (g *QualityGrade) Passed() bool {
	return g.Status == GradePass
}

// Equivalent reports whether g and other agree on everything except phase
// durations, which depend on the wall clock.
func (g *QualityGrade) Equivalent(other *QualityGrade) bool {
	if g == nil || other == nil {
		return g == other
	}
	return reflect.DeepEqual(g.withoutDurations(), other.withoutDurations())
}

func (g *QualityGrade) withoutDurations() QualityGrade {
	c := *g
	c.Results = make([]ValidationResult, len(g.Results))
	copy(c.Results, g.Results)
	for i := range c.Results {
		c.Results[i].Duration = 0
	}
	return c
}

// Mode is the strictness level of schema validation. Each mode includes
// every check of the modes before it.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeEnhanced Mode = "enhanced"
	ModeResearch Mode = "research-grade"
	ModeAudit    Mode = "audit"
)

// AllModes returns the modes from least to most strict.
func AllModes() []Mode {
	return []Mode{ModeBasic, ModeEnhanced, ModeResearch, ModeAudit}
}

func (m Mode) rank() int {
	for i, mode := range AllModes() {
		if mode == m {
			return i + 1
		}
	}
	return 0
}

// Includes reports whether m runs the checks of other.
func (m Mode) Includes(other Mode) bool {
	return m.rank() >= other.rank() && other.rank() > 0
}

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m.rank() == 0 {
		return "", fmt.Errorf("unknown validation mode %q", s)
	}
	return m, nil
}
