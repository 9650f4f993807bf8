package quality

import (
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// Synthetic measures human likeness by penalizing formulaic patterns typical
// of unedited machine text: boilerplate phrases, unnaturally precise
// decimals and repeated sentence openers. Each category's penalty is capped
// so one pattern cannot zero the score.
type Synthetic struct{}

// Dimension returns human_likeness.
func (Synthetic) Dimension() content.Dimension { return content.DimensionHumanLike }

// Score implements Scorer.
func (Synthetic) Score(text string, ctx ScoreContext, req *requirements.Config) (content.QualityScore, []content.Issue) {
	rules := req.Synthetic

	hits := make(map[string]int, len(rules.Categories))
	for _, p := range rules.Patterns {
		hits[p.Category] += p.Count(text)
	}
	hits[requirements.SyntheticRepeatedOpeners] = repeatedOpeners(Sentences(text, req.Text), rules.RepeatedOpenerThreshold)

	categories := make([]string, 0, len(rules.Categories))
	for name := range rules.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	var (
		total        float64
		issues       []content.Issue
		observations []string
	)
	for _, name := range categories {
		n := hits[name]
		if n == 0 {
			continue
		}
		penalty := rules.Categories[name].Penalty(n)
		total += penalty
		observations = append(observations, fmt.Sprintf("%s: %d hit(s), -%.1f", name, n, penalty))
		issues = append(issues, content.NewIssue(req.Severity(requirements.RuleSyntheticPattern), content.IssueSynthetic,
			ctx.Field, "synthetic.categories."+name, "%d %s pattern hit(s)", n, name))
	}

	return content.NewQualityScore(content.DimensionHumanLike, ctx.Field, 100-total, observations...), issues
}

// repeatedOpeners counts sentences whose opener is shared by at least
// threshold sentences, excluding the first occurrence of each opener.
func repeatedOpeners(sentences []string, threshold int) int {
	counts := make(map[string]int)
	for _, s := range sentences {
		if o := Opener(s); o != "" {
			counts[o]++
		}
	}
	hits := 0
	for _, n := range counts {
		if n >= threshold {
			hits += n - 1
		}
	}
	return hits
}
