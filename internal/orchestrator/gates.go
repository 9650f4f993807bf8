package orchestrator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// aggregateField folds the per-field scores of one dimension.
func aggregateField(method string, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch method {
	case requirements.AggregateMean:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return content.ClampScore(sum / float64(len(values)))
	default:
		min := math.Inf(1)
		for _, v := range values {
			min = math.Min(min, v)
		}
		return content.ClampScore(min)
	}
}

// overall is the weighted sum of dimension scores.
func (p *Pipeline) overall(dims map[content.Dimension]float64) float64 {
	total := 0.0
	for _, dim := range content.AllDimensions() {
		total += float64(p.req.Scoring.Weight(dim) * dims[dim])
	}
	return content.ClampScore(total)
}

// meetsMinimums reports whether the overall and every dimension score reach
// their configured minimums.
func (p *Pipeline) meetsMinimums(dims map[content.Dimension]float64) bool {
	if p.overall(dims) < p.req.Scoring.MinimumOverall {
		return false
	}
	for _, dim := range content.AllDimensions() {
		if dims[dim] < p.req.Scoring.Minimum(dim) {
			return false
		}
	}
	return true
}

// aggregate builds the grade. The gate fails when any issue is critical,
// when a phase that ran failed its threshold, or, for a scored record, when
// the overall score or any single dimension is below its minimum.
func (p *Pipeline) aggregate(recordID string, r *run) *content.QualityGrade {
	grade := &content.QualityGrade{
		RecordID:       recordID,
		MinimumOverall: p.req.Scoring.MinimumOverall,
		Results:        make([]content.ValidationResult, 0, len(r.results)),
		Fixes:          r.fixes,
	}
	for _, phase := range content.AllPhases() {
		grade.Results = append(grade.Results, r.results[phase])
	}

	quality, _ := grade.Result(content.PhaseQuality)
	grade.Scored = quality.Ran() && r.dims != nil
	if grade.Scored {
		grade.OverallScore = p.overall(r.dims)
		grade.Dimensions = make(map[content.Dimension]content.DimensionGrade, len(r.dims))
		for _, dim := range content.AllDimensions() {
			minimum := p.req.Scoring.Minimum(dim)
			grade.Dimensions[dim] = content.DimensionGrade{
				Score:   r.dims[dim],
				Minimum: minimum,
				Weight:  p.req.Scoring.Weight(dim),
				Passed:  r.dims[dim] >= minimum,
			}
		}
	}

	grade.Status = content.GradePass
	if gateFails(grade) {
		grade.Status = content.GradeFail
	}
	grade.Recommendations = p.recommend(grade, r)
	return grade
}

func gateFails(g *content.QualityGrade) bool {
	if content.HasCritical(g.Issues()) {
		return true
	}
	for _, res := range g.Results {
		if res.Status == content.StatusFail {
			return true
		}
	}
	if !g.Scored {
		return false
	}
	if g.OverallScore < g.MinimumOverall {
		return true
	}
	for _, d := range g.Dimensions {
		if !d.Passed {
			return true
		}
	}
	return false
}

// recommend turns the grade into remediation hints, most urgent first.
func (p *Pipeline) recommend(g *content.QualityGrade, r *run) []string {
	var recs []string
	issues := g.Issues()
	counts := content.CountBySeverity(issues)

	if n := counts[content.SeverityCritical]; n > 0 {
		recs = append(recs, fmt.Sprintf("Resolve %d critical %s before publishing.", n, plural(n, "issue")))
	}

	var notRun []string
	for _, res := range g.Results {
		if res.Status == content.StatusNotRun {
			notRun = append(notRun, string(res.Phase))
		}
	}
	if len(notRun) > 0 {
		recs = append(recs, fmt.Sprintf("Fix the critical schema issues so the %s %s can run.",
			strings.Join(notRun, " and "), plural(len(notRun), "phase")))
	}

	for _, res := range g.Results {
		if res.Status != content.StatusFail || res.Phase == content.PhaseQuality {
			continue
		}
		threshold := p.req.Phases.Schema.FailAt
		if res.Phase == content.PhaseAudit {
			threshold = p.req.Phases.Audit.FailAt
		}
		recs = append(recs, fmt.Sprintf("Address the %s issues at or above %s severity.", res.Phase, threshold))
	}

	if g.Scored {
		var failing []content.Dimension
		for dim, d := range g.Dimensions {
			if !d.Passed {
				failing = append(failing, dim)
			}
		}
		sort.Slice(failing, func(i, j int) bool { return failing[i] < failing[j] })
		for _, dim := range failing {
			d := g.Dimensions[dim]
			recs = append(recs, fmt.Sprintf("Raise %s from %.1f to at least %.1f.", dim, d.Score, d.Minimum))
		}
		if g.OverallScore < g.MinimumOverall {
			recs = append(recs, fmt.Sprintf("Overall score %.1f is below the minimum of %.1f.", g.OverallScore, g.MinimumOverall))
		}
	} else if res, ok := g.Result(content.PhaseQuality); ok && res.Status == content.StatusPass {
		recs = append(recs, "Record has no text fields to score.")
	}

	if !r.opts.AutoFix {
		fixable := 0
		for _, i := range issues {
			if i.Fix != content.FixNone {
				fixable++
			}
		}
		if fixable > 0 {
			recs = append(recs, fmt.Sprintf("%d %s can be corrected automatically with auto-fix.", fixable, plural(fixable, "issue")))
		}
	}
	return recs
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
