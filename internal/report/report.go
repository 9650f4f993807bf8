package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/orchestrator"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options select the output format and color mode.
type Options struct {
	Format string
	Color  string
}

// Writer renders grades to an io.Writer.
type Writer struct {
	w      io.Writer
	format string
	styles styles
}

// New returns a Writer for w.
func New(w io.Writer, opts Options) (*Writer, error) {
	format := opts.Format
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON:
	default:
		return nil, fmt.Errorf("unknown report format %q", opts.Format)
	}

	st, err := newStyles(w, opts.Color)
	if err != nil {
		return nil, err
	}
	return &Writer{w: w, format: format, styles: st}, nil
}

type gradeDocument struct {
	Grade    *content.QualityGrade `json:"grade"`
	ExitCode int                   `json:"exit_code"`
}

type batchDocument struct {
	RunID    string                    `json:"run_id"`
	Duration string                    `json:"duration"`
	Summary  orchestrator.BatchSummary `json:"summary"`
	Grades   []*content.QualityGrade   `json:"grades"`
	ExitCode int                       `json:"exit_code"`
}

// Grade writes the report of one record.
func (r *Writer) Grade(g *content.QualityGrade) error {
	if r.format == FormatJSON {
		return r.writeJSON(gradeDocument{Grade: g, ExitCode: ExitCode(g)})
	}

	var b strings.Builder
	r.grade(&b, g)
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Batch writes the report of every graded record followed by the summary.
func (r *Writer) Batch(res *orchestrator.BatchResult) error {
	if r.format == FormatJSON {
		return r.writeJSON(batchDocument{
			RunID:    res.RunID,
			Duration: res.Duration.String(),
			Summary:  res.Summary(),
			Grades:   res.Grades,
			ExitCode: BatchExitCode(res),
		})
	}

	var b strings.Builder
	for _, g := range res.Grades {
		if g == nil {
			continue
		}
		r.grade(&b, g)
		b.WriteString("\n")
	}
	r.summary(&b, res)
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Writer) writeJSON(doc any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

func (r *Writer) grade(b *strings.Builder, g *content.QualityGrade) {
	fmt.Fprintf(b, "%s %s\n", r.styles.header.Render("Record"), g.RecordID)

	for _, res := range g.Results {
		fmt.Fprintf(b, "  %-8s %s\n", res.Phase, r.styles.muted.Render(string(res.Status)))
	}

	issues := g.Issues()
	if len(issues) > 0 {
		b.WriteString("\n")
	}
	for _, issue := range issues {
		b.WriteString(r.issueLine(issue))
		b.WriteString("\n")
	}

	if len(g.Fixes) > 0 {
		b.WriteString("\nFixes applied:\n")
		for _, fix := range g.Fixes {
			fmt.Fprintf(b, "  %s %s: %s\n", fix.Kind, fix.Field, fix.Detail)
		}
	}

	b.WriteString("\n")
	r.dimensions(b, g)

	if len(g.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range g.Recommendations {
			fmt.Fprintf(b, "  - %s\n", rec)
		}
	}

	b.WriteString(r.styles.status(g.Passed(), string(g.Status)))
	b.WriteString("\n")
}

// issueLine renders an issue as [SEVERITY][CATEGORY] field: message
// (source: path), coloring only the severity tag.
func (r *Writer) issueLine(i content.Issue) string {
	line := i.String()
	tag := "[" + strings.ToUpper(string(i.Severity)) + "]"
	style, ok := r.styles.severity[i.Severity]
	if !ok {
		return line
	}
	return style.Render(tag) + strings.TrimPrefix(line, tag)
}

func (r *Writer) dimensions(b *strings.Builder, g *content.QualityGrade) {
	if !g.Scored {
		b.WriteString(r.styles.muted.Render("quality not scored"))
		b.WriteString("\n")
		return
	}

	fmt.Fprintf(b, "%s\n", r.styles.header.Render(fmt.Sprintf("%-20s %6s %8s %7s  %s", "DIMENSION", "SCORE", "MINIMUM", "WEIGHT", "RESULT")))
	for _, dim := range content.AllDimensions() {
		dg, ok := g.Dimensions[dim]
		if !ok {
			continue
		}
		result := "pass"
		if !dg.Passed {
			result = "fail"
		}
		fmt.Fprintf(b, "%-20s %6.2f %8.2f %7.2f  %s\n",
			dim, dg.Score, dg.Minimum, dg.Weight, r.styles.status(dg.Passed, result))
	}

	overall := g.OverallScore >= g.MinimumOverall
	result := "pass"
	if !overall {
		result = "fail"
	}
	fmt.Fprintf(b, "%-20s %6.2f %8.2f %7s  %s\n",
		"overall", g.OverallScore, g.MinimumOverall, "", r.styles.status(overall, result))
}

func (r *Writer) summary(b *strings.Builder, res *orchestrator.BatchResult) {
	s := res.Summary()
	fmt.Fprintf(b, "%s %s: %d records, %d passed, %d failed, %d ungraded (%s)\n",
		r.styles.header.Render("Batch"), res.RunID, s.Total, s.Passed, s.Failed, s.Total-s.Graded, res.Duration.Round(time.Millisecond))

	parts := make([]string, 0, 4)
	for _, sev := range []content.Severity{
		content.SeverityCritical,
		content.SeverityMajor,
		content.SeverityMinor,
		content.SeverityInformational,
	} {
		parts = append(parts, fmt.Sprintf("%s %d", sev, s.Issues[sev]))
	}
	fmt.Fprintf(b, "Issues: %s\n", strings.Join(parts, ", "))

	if len(s.Critical) > 0 {
		fmt.Fprintf(b, "Critical records: %s\n", strings.Join(s.Critical, ", "))
	}

	passed := res.Passed()
	label := string(content.GradePass)
	if !passed {
		label = string(content.GradeFail)
	}
	b.WriteString(r.styles.status(passed, label))
	b.WriteString("\n")
}
