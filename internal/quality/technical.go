package quality

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// Claim is a number with a unit asserted in text.
type Claim struct {
	Text  string
	Value float64
	Unit  string
	Field string
}

// Technical cross-checks numeric claims in text against the record's own
// structured fields. Claims whose field is absent are not checkable and are
// excluded from the score.
type Technical struct{}

// Dimension returns technical_accuracy.
func (Technical) Dimension() content.Dimension { return content.DimensionTechnical }

// Score implements Scorer.
func (Technical) Score(text string, ctx ScoreContext, req *requirements.Config) (content.QualityScore, []content.Issue) {
	rules := req.Technical

	var (
		checkable, consistent int
		issues                []content.Issue
	)
	for _, claim := range ExtractClaims(text, rules) {
		actual, ok := lookupNumber(ctx.Fields, claim.Field)
		if !ok {
			continue
		}
		checkable++
		rule, _ := rules.Claim(claim.Unit)
		tolerance := rules.ToleranceFor(rule)
		if math.Abs(claim.Value-actual) <= tolerance*math.Abs(actual) {
			consistent++
			continue
		}
		issues = append(issues, content.NewIssue(req.Severity(requirements.RuleInconsistentClaim), content.IssueTextQuality,
			ctx.Field, "technical.claims", "claim %q disagrees with %s = %s (tolerance %.0f%%)",
			claim.Text, claim.Field, strconv.FormatFloat(actual, 'f', -1, 64), tolerance*100))
	}

	if checkable == 0 {
		return content.NewQualityScore(content.DimensionTechnical, ctx.Field, rules.NoClaimsScore, "no checkable claims"), nil
	}
	value := 100 * float64(consistent) / float64(checkable)
	return content.NewQualityScore(content.DimensionTechnical, ctx.Field, value,
		fmt.Sprintf("%d of %d claims consistent", consistent, checkable)), issues
}

// ExtractClaims returns every number-with-unit claim in text whose unit is
// mapped in rules.
func ExtractClaims(text string, rules requirements.TechnicalRules) []Claim {
	m := rules.Matcher()
	if m == nil {
		return nil
	}
	var out []Claim
	for _, loc := range m.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) || r == '.' || afterDigitGroup(text[:start]) {
				continue
			}
		}
		if end < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
				continue
			}
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(text[loc[2]:loc[3]], ",", ""), 64)
		if err != nil {
			continue
		}
		unit := text[loc[4]:loc[5]]
		rule, _ := rules.Claim(unit)
		out = append(out, Claim{
			Text:  strings.TrimSpace(text[start:end]),
			Value: value,
			Unit:  unit,
			Field: rule.Field,
		})
	}
	return out
}

// afterDigitGroup reports whether prefix ends in a comma following a digit,
// as in the tail of a malformed group such as "1,50".
func afterDigitGroup(prefix string) bool {
	if !strings.HasSuffix(prefix, ",") {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(prefix[:len(prefix)-1])
	return unicode.IsDigit(r)
}

// lookupNumber resolves a dotted field path to a numeric value.
func lookupNumber(fields map[string]content.Field, path string) (float64, bool) {
	parts := strings.Split(path, ".")
	cur := fields
	for i, p := range parts {
		f, ok := cur[p]
		if !ok {
			return 0, false
		}
		if i == len(parts)-1 {
			if f.Value.Kind != content.KindNumber {
				return 0, false
			}
			return f.Value.Number, true
		}
		if f.Value.Kind != content.KindObject {
			return 0, false
		}
		cur = f.Value.Object
	}
	return 0, false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
