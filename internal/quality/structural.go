package quality

import (
	"fmt"
	"math"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// Structural scores sentence and paragraph counts, line length and
// formatting artifacts. Each violation type deducts penalty × count, capped
// per type.
type Structural struct{}

// Dimension returns structural_quality.
func (Structural) Dimension() content.Dimension { return content.DimensionStructural }

// Score implements Scorer.
func (Structural) Score(text string, ctx ScoreContext, req *requirements.Config) (content.QualityScore, []content.Issue) {
	rules := req.Structural
	var (
		issues       []content.Issue
		observations []string
		deduction    float64
	)
	deduct := func(penalty float64, count int) {
		deduction += math.Min(penalty*float64(count), rules.MaxPenaltyPerType)
	}
	emit := func(rule, source, format string, args ...any) {
		issues = append(issues, content.NewIssue(req.Severity(rule), content.IssueTextQuality, ctx.Field, source, format, args...))
	}

	sentences := len(Sentences(text, req.Text))
	observations = append(observations, fmt.Sprintf("%d sentences", sentences))
	if !rules.Sentences.Contains(sentences) {
		deduct(rules.Penalties.SentenceCount, 1)
		emit(requirements.RuleSentenceCount, "structural.sentences",
			"%d sentences, expected %d to %d", sentences, rules.Sentences.Min, rules.Sentences.Max)
	}

	paragraphs := len(Paragraphs(text))
	observations = append(observations, fmt.Sprintf("%d paragraphs", paragraphs))
	if !rules.Paragraphs.Contains(paragraphs) {
		deduct(rules.Penalties.ParagraphCount, 1)
		emit(requirements.RuleParagraphCount, "structural.paragraphs",
			"%d paragraphs, expected %d to %d", paragraphs, rules.Paragraphs.Min, rules.Paragraphs.Max)
	}

	long := LongLines(text, rules.MaxLineLength)
	if len(long) > 0 {
		deduct(rules.Penalties.LineLength, len(long))
		for _, n := range long {
			emit(requirements.RuleLineLength, "structural.max_line_length",
				"line %d exceeds %d characters", n, rules.MaxLineLength)
		}
	}

	artifacts := 0
	for _, p := range rules.ForbiddenPatterns {
		n := p.Count(text)
		if n == 0 {
			continue
		}
		artifacts += n
		emit(requirements.RuleArtifact, "structural.forbidden_patterns."+p.ID,
			"%s artifact %q found %d time(s)", p.Category, p.ID, n)
	}
	if artifacts > 0 {
		deduct(rules.Penalties.Artifact, artifacts)
		observations = append(observations, fmt.Sprintf("%d formatting artifacts", artifacts))
	}

	return content.NewQualityScore(content.DimensionStructural, ctx.Field, 100-deduction, observations...), issues
}
