package quality

import (
	"fmt"
	"unicode/utf8"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// ScoreContext is the record metadata a scorer may consult.
type ScoreContext struct {
	RecordID     string
	Category     content.Category
	VoiceProfile string
	Field        string
	Fields       map[string]content.Field
}

// ContextFor builds the score context of one text field of rec.
func ContextFor(rec *content.Record, field string) ScoreContext {
	return ScoreContext{
		RecordID:     rec.ID,
		Category:     rec.Category,
		VoiceProfile: rec.VoiceProfile,
		Field:        field,
		Fields:       rec.Fields,
	}
}

// Scorer scores one text field along one dimension.
type Scorer interface {
	// Dimension returns the quality dimension the scorer measures.
	Dimension() content.Dimension

	// Score evaluates text. It must not retain text or ctx.
	Score(text string, ctx ScoreContext, req *requirements.Config) (content.QualityScore, []content.Issue)
}

// DefaultScorers returns the four built-in scorers, each wrapped with Safe,
// in dimension order.
func DefaultScorers() []Scorer {
	return []Scorer{
		Safe(Voice{}),
		Safe(Synthetic{}),
		Safe(Technical{}),
		Safe(Structural{}),
	}
}

type safeScorer struct {
	inner Scorer
}

// Safe wraps s so that invalid UTF-8 input or a panic inside s yields a
// zero score and a scoring-failure issue.
func Safe(s Scorer) Scorer {
	if _, ok := s.(safeScorer); ok {
		return s
	}
	return safeScorer{inner: s}
}

func (s safeScorer) Dimension() content.Dimension { return s.inner.Dimension() }

func (s safeScorer) Score(text string, ctx ScoreContext, req *requirements.Config) (score content.QualityScore, issues []content.Issue) {
	if !utf8.ValidString(text) {
		return failure(s.Dimension(), ctx, req, "text is not valid UTF-8")
	}
	defer func() {
		if r := recover(); r != nil {
			score, issues = failure(s.Dimension(), ctx, req, fmt.Sprintf("scorer failed: %v", r))
		}
	}()
	return s.inner.Score(text, ctx, req)
}

func failure(dim content.Dimension, ctx ScoreContext, req *requirements.Config, reason string) (content.QualityScore, []content.Issue) {
	issue := content.NewIssue(req.Severity(requirements.RuleScoringFailure), content.IssueTextQuality, ctx.Field,
		requirements.SeveritySource(requirements.RuleScoringFailure), "%s could not be scored: %s", dim, reason)
	return content.NewQualityScore(dim, ctx.Field, 0, reason), []content.Issue{issue}
}
