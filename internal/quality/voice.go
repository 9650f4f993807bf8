package quality

import (
	"fmt"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// Voice rewards markers of the declared voice profile and penalizes markers
// of every other profile:
//
//	score = 100 × (own − contamination_factor × other) / saturation
//
// where own and other are weighted hit counts, each marker contributing at
// most max_hits_per_marker hits.
type Voice struct{}

// Dimension returns voice_authenticity.
func (Voice) Dimension() content.Dimension { return content.DimensionVoice }

// Score implements Scorer.
func (Voice) Score(text string, ctx ScoreContext, req *requirements.Config) (content.QualityScore, []content.Issue) {
	rules := req.Voice
	profile, ok := rules.Profile(ctx.VoiceProfile)
	if !ok {
		issue := content.NewIssue(req.Severity(requirements.RuleUnknownProfile), content.IssueVoice, ctx.Field,
			"voice.profiles", "voice profile %q is not registered", ctx.VoiceProfile)
		return content.NewQualityScore(content.DimensionVoice, ctx.Field, 0, "unknown voice profile"), []content.Issue{issue}
	}

	own := markerWeight(profile.Markers, text, rules.MaxHitsPerMarker)

	var (
		other  float64
		issues []content.Issue
	)
	for _, id := range rules.ProfileIDs() {
		if id == ctx.VoiceProfile {
			continue
		}
		foreign, _ := rules.Profile(id)
		w := markerWeight(foreign.Markers, text, rules.MaxHitsPerMarker)
		if w == 0 {
			continue
		}
		other += w
		issues = append(issues, content.NewIssue(req.Severity(requirements.RuleVoiceContamination), content.IssueVoice,
			ctx.Field, "voice.profiles."+id+".markers",
			"markers of voice profile %q matched with weight %.2f", id, w))
	}

	value := 100 * (own - rules.ContaminationFactor*other) / rules.Saturation
	return content.NewQualityScore(content.DimensionVoice, ctx.Field, value,
		fmt.Sprintf("own marker weight %.2f", own),
		fmt.Sprintf("foreign marker weight %.2f", other),
	), issues
}

func markerWeight(markers []requirements.PatternRule, text string, maxHits int) float64 {
	var total float64
	for _, m := range markers {
		hits := m.Count(text)
		if hits > maxHits {
			hits = maxHits
		}
		total += m.Weight * float64(hits)
	}
	return total
}
