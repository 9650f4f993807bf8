package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/orchestrator"
)

func passingGrade() *content.QualityGrade {
	return &content.QualityGrade{
		RecordID:       "aluminum",
		Status:         content.GradePass,
		Scored:         true,
		OverallScore:   82,
		MinimumOverall: 70,
		Dimensions: map[content.Dimension]content.DimensionGrade{
			content.DimensionVoice:      {Score: 90, Minimum: 70, Weight: 0.25, Passed: true},
			content.DimensionHumanLike:  {Score: 80, Minimum: 70, Weight: 0.25, Passed: true},
			content.DimensionTechnical:  {Score: 78, Minimum: 70, Weight: 0.25, Passed: true},
			content.DimensionStructural: {Score: 80, Minimum: 70, Weight: 0.25, Passed: true},
		},
		Results: []content.ValidationResult{
			{Phase: content.PhaseSchema, Status: content.StatusPass},
			{Phase: content.PhaseAudit, Status: content.StatusPass, Issues: []content.Issue{
				content.NewIssue(content.SeverityMinor, content.IssueArchitecture, "density", "materials.properties.density", "missing source"),
			}},
			{Phase: content.PhaseQuality, Status: content.StatusPass},
		},
	}
}

func criticalGrade() *content.QualityGrade {
	return &content.QualityGrade{
		RecordID: "rust",
		Status:   content.GradeFail,
		Results: []content.ValidationResult{
			{Phase: content.PhaseSchema, Status: content.StatusFail, Issues: []content.Issue{
				content.NewIssue(content.SeverityCritical, content.IssueSchema, "", "validation.required_fields", "missing required field %q", "category"),
			}},
			{Phase: content.PhaseAudit, Status: content.StatusNotRun},
			{Phase: content.PhaseQuality, Status: content.StatusNotRun},
		},
	}
}

func newWriter(t *testing.T, buf *bytes.Buffer, opts Options) *Writer {
	t.Helper()
	w, err := New(buf, opts)
	require.NoError(t, err)
	return w
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}

func TestWriter_GradeText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newWriter(t, &buf, Options{Color: ColorNever}).Grade(passingGrade()))
	out := buf.String()

	assert.Contains(t, out, "Record aluminum\n")
	assert.Contains(t, out, "  audit    pass\n")
	assert.Contains(t, out, "[MINOR][ARCHITECTURE] density: missing source (source: materials.properties.density)\n")
	assert.Contains(t, out, "DIMENSION             SCORE  MINIMUM  WEIGHT  RESULT\n")
	assert.Contains(t, out, "voice_authenticity    90.00    70.00    0.25  pass\n")
	assert.Contains(t, out, "overall               82.00    70.00          pass\n")
	assert.NotContains(t, out, "\x1b[")
	assert.Equal(t, "PASS", lastLine(out))

	// The dimension table follows the canonical dimension order.
	assert.Less(t, strings.Index(out, "voice_authenticity"), strings.Index(out, "structural_quality"))
}

func TestWriter_GradeUnscored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newWriter(t, &buf, Options{}).Grade(criticalGrade()))
	out := buf.String()

	assert.Contains(t, out, "[CRITICAL][SCHEMA] record: missing required field \"category\" (source: validation.required_fields)\n")
	assert.Contains(t, out, "  quality  not_run\n")
	assert.Contains(t, out, "quality not scored\n")
	assert.NotContains(t, out, "DIMENSION")
	assert.Equal(t, "FAIL", lastLine(out))
}

func TestWriter_GradeFixesAndRecommendations(t *testing.T) {
	g := passingGrade()
	g.Fixes = []content.AppliedFix{{Kind: content.FixEnumCase, Field: "category", Phase: content.PhaseSchema, Detail: "Material -> material"}}
	g.Recommendations = []string{"cite a source for density"}

	var buf bytes.Buffer
	require.NoError(t, newWriter(t, &buf, Options{Color: ColorNever}).Grade(g))
	out := buf.String()

	assert.Contains(t, out, "Fixes applied:\n  normalize_enum_case category: Material -> material\n")
	assert.Contains(t, out, "Recommendations:\n  - cite a source for density\n")
}

func TestWriter_ColorAlways(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newWriter(t, &buf, Options{Color: ColorAlways}).Grade(criticalGrade()))
	out := buf.String()

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "[SCHEMA] record: missing required field")
}

func TestWriter_GradeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newWriter(t, &buf, Options{Format: FormatJSON}).Grade(criticalGrade()))

	var doc struct {
		Grade    content.QualityGrade `json:"grade"`
		ExitCode int                  `json:"exit_code"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "rust", doc.Grade.RecordID)
	assert.Equal(t, content.GradeFail, doc.Grade.Status)
	assert.Equal(t, ExitCritical, doc.ExitCode)
}

func TestWriter_Batch(t *testing.T) {
	res := &orchestrator.BatchResult{
		RunID:    "run-1",
		Grades:   []*content.QualityGrade{passingGrade(), criticalGrade(), nil},
		Duration: 1500 * time.Millisecond,
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newWriter(t, &buf, Options{Color: ColorNever}).Batch(res))
		out := buf.String()

		assert.Contains(t, out, "Record aluminum\n")
		assert.Contains(t, out, "Record rust\n")
		assert.Contains(t, out, "Batch run-1: 3 records, 1 passed, 1 failed, 1 ungraded (1.5s)\n")
		assert.Contains(t, out, "Issues: critical 1, major 0, minor 1, informational 0\n")
		assert.Contains(t, out, "Critical records: rust\n")
		assert.Equal(t, "FAIL", lastLine(out))
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, newWriter(t, &buf, Options{Format: FormatJSON}).Batch(res))

		var doc struct {
			RunID    string                    `json:"run_id"`
			Summary  orchestrator.BatchSummary `json:"summary"`
			ExitCode int                       `json:"exit_code"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Equal(t, "run-1", doc.RunID)
		assert.Equal(t, 3, doc.Summary.Total)
		assert.Equal(t, 2, doc.Summary.Graded)
		assert.Equal(t, ExitCritical, doc.ExitCode)
	})
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.ErrorContains(t, err, `unknown report format "xml"`)

	_, err = New(&bytes.Buffer{}, Options{Color: "sometimes"})
	assert.ErrorContains(t, err, `unknown color mode "sometimes"`)
}

func TestExitCode(t *testing.T) {
	majorOnly := passingGrade()
	majorOnly.Status = content.GradeFail
	majorOnly.Results[1].Issues = []content.Issue{
		content.NewIssue(content.SeverityMajor, content.IssueArchitecture, "density", "materials.properties.density", "out of range"),
	}

	tests := []struct {
		name  string
		grade *content.QualityGrade
		want  int
	}{
		{"pass", passingGrade(), ExitPass},
		{"fail without critical", majorOnly, ExitFail},
		{"critical", criticalGrade(), ExitCritical},
		{"nil", nil, ExitFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.grade))
		})
	}
}

func TestBatchExitCode(t *testing.T) {
	assert.Equal(t, ExitPass, BatchExitCode(&orchestrator.BatchResult{Grades: []*content.QualityGrade{passingGrade()}}))
	assert.Equal(t, ExitFail, BatchExitCode(&orchestrator.BatchResult{Grades: []*content.QualityGrade{passingGrade(), nil}}))
	assert.Equal(t, ExitCritical, BatchExitCode(&orchestrator.BatchResult{Grades: []*content.QualityGrade{criticalGrade(), nil}}))
	assert.Equal(t, ExitPass, BatchExitCode(&orchestrator.BatchResult{}))
}
