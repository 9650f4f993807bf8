package requirements

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/secrets"
)

// compile validates the decoded document and builds every lookup table and
// matcher the pipeline needs.
func compile(cfg *Config, doc document, k *koanf.Koanf) error {
	if doc.Version < 1 {
		return configErr("version", "must be a positive integer")
	}

	mode, err := content.ParseMode(doc.Schema.Mode)
	if err != nil {
		return wrapConfigErr("schema.mode", "invalid mode", err)
	}
	cfg.mode = mode

	if err := compileCategories(cfg, doc.Categories); err != nil {
		return err
	}

	cfg.Text.abbrev = make(map[string]bool, len(doc.Text.Abbreviations))
	for _, a := range doc.Text.Abbreviations {
		cfg.Text.abbrev[strings.ToLower(a)] = true
	}

	steps := []func(*Config) error{
		compileStructural,
		compileVoice,
		compileSynthetic,
		compileTechnical,
		validateScoring,
		validatePhases,
		validateAutoFix,
	}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			return err
		}
	}

	if err := compileSeverities(cfg, k); err != nil {
		return err
	}

	secretCfg := doc.Secrets
	detector, err := secrets.New(&secretCfg)
	if err != nil {
		return wrapConfigErr("secrets", "invalid secret rules", err)
	}
	cfg.detector = detector
	return nil
}

func compileCategories(cfg *Config, raw map[string]CategoryRules) error {
	if len(raw) == 0 {
		return configErr("categories", "at least one category is required")
	}
	for name, rules := range raw {
		key := "categories." + name
		cat, err := content.ParseCategory(name)
		if err != nil {
			return wrapConfigErr(key, "unknown category", err)
		}

		rules.required = set(rules.RequiredFields)
		rules.forbidden = set(rules.ForbiddenFields)
		rules.members = set(rules.Members)
		rules.allowed = set(append(append([]string{}, rules.RequiredFields...), rules.OptionalFields...))
		for f := range rules.forbidden {
			if rules.allowed[f] {
				return configErr(key+".forbidden_fields", "field %q is also declared allowed", f)
			}
		}

		rules.kinds = make(map[string]content.Kind, len(rules.FieldTypes))
		for field, typ := range rules.FieldTypes {
			kind, err := content.ParseKind(typ)
			if err != nil {
				return wrapConfigErr(key+".field_types."+field, "invalid type", err)
			}
			rules.kinds[field] = kind
		}

		for field, values := range rules.Enums {
			if len(values) == 0 {
				return configErr(key+".enums."+field, "enum must list at least one value")
			}
		}

		for field, r := range rules.Ranges {
			if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max {
				return configErr(key+".ranges."+field, "min %v exceeds max %v", r.Min, r.Max)
			}
		}

		if rules.FormulaPattern != "" {
			re, err := regexp.Compile(rules.FormulaPattern)
			if err != nil {
				return wrapConfigErr(key+".formula_pattern", "invalid pattern", err)
			}
			rules.formula = re
		}

		cfg.Categories[cat] = rules
	}
	return nil
}

func compileStructural(cfg *Config) error {
	s := &cfg.Structural
	if err := checkBounds("structural.sentences", s.Sentences); err != nil {
		return err
	}
	if err := checkBounds("structural.paragraphs", s.Paragraphs); err != nil {
		return err
	}
	if s.MaxLineLength <= 0 {
		return configErr("structural.max_line_length", "must be positive")
	}
	p := s.Penalties
	for key, v := range map[string]float64{
		"sentence_count":  p.SentenceCount,
		"paragraph_count": p.ParagraphCount,
		"line_length":     p.LineLength,
		"artifact":        p.Artifact,
	} {
		if v < 0 {
			return configErr("structural.penalties."+key, "must not be negative")
		}
	}
	if s.MaxPenaltyPerType <= 0 || s.MaxPenaltyPerType > 100 {
		return configErr("structural.max_penalty_per_type", "must be in (0, 100]")
	}
	rules, err := compilePatterns("structural.forbidden_patterns", s.ForbiddenPatterns)
	if err != nil {
		return err
	}
	s.ForbiddenPatterns = rules
	return nil
}

func compileVoice(cfg *Config) error {
	v := &cfg.Voice
	if v.Saturation <= 0 {
		return configErr("voice.saturation", "must be positive")
	}
	if v.ContaminationFactor < 0 {
		return configErr("voice.contamination_factor", "must not be negative")
	}
	if v.MaxHitsPerMarker < 1 {
		return configErr("voice.max_hits_per_marker", "must be at least 1")
	}
	if len(v.Profiles) == 0 {
		return configErr("voice.profiles", "at least one profile is required")
	}
	profiles := make(map[string]VoiceProfile, len(v.Profiles))
	for id, profile := range v.Profiles {
		key := "voice.profiles." + id + ".markers"
		if len(profile.Markers) == 0 {
			return configErr(key, "profile must declare at least one marker")
		}
		markers, err := compilePatterns(key, profile.Markers)
		if err != nil {
			return err
		}
		for _, m := range markers {
			if m.Weight <= 0 {
				return configErr(key, "marker %q weight must be positive", m.ID)
			}
		}
		profiles[id] = VoiceProfile{Markers: markers}
	}
	v.Profiles = profiles
	return nil
}

func compileSynthetic(cfg *Config) error {
	s := &cfg.Synthetic
	for _, name := range []string{SyntheticBoilerplate, SyntheticPrecision, SyntheticRepeatedOpeners} {
		c, ok := s.Categories[name]
		if !ok {
			return configErr("synthetic.categories."+name, "required key missing")
		}
		if c.Weight < 0 || c.Cap < 0 || c.Cap > 100 {
			return configErr("synthetic.categories."+name, "weight must not be negative and cap must be in [0, 100]")
		}
	}
	if s.RepeatedOpenerThreshold < 2 {
		return configErr("synthetic.repeated_opener_threshold", "must be at least 2")
	}
	rules, err := compilePatterns("synthetic.patterns", s.Patterns)
	if err != nil {
		return err
	}
	for _, r := range rules {
		if _, ok := s.Categories[r.Category]; !ok || r.Category == SyntheticRepeatedOpeners {
			return configErr("synthetic.patterns", "pattern %q has invalid category %q", r.ID, r.Category)
		}
	}
	s.Patterns = rules
	return nil
}

func compileTechnical(cfg *Config) error {
	t := &cfg.Technical
	if t.RelativeTolerance < 0 {
		return configErr("technical.relative_tolerance", "must not be negative")
	}
	if t.NoClaimsScore < 0 || t.NoClaimsScore > 100 {
		return configErr("technical.no_claims_score", "must be in [0, 100]")
	}

	t.byUnit = make(map[string]ClaimRule, len(t.Claims))
	units := make([]string, 0, len(t.Claims))
	for i, c := range t.Claims {
		key := fmt.Sprintf("technical.claims[%d]", i)
		if c.Unit == "" || c.Field == "" {
			return configErr(key, "unit and field are required")
		}
		if _, dup := t.byUnit[c.Unit]; dup {
			return configErr(key, "duplicate unit %q", c.Unit)
		}
		if c.Tolerance != nil && *c.Tolerance < 0 {
			return configErr(key+".tolerance", "must not be negative")
		}
		t.byUnit[c.Unit] = c
		units = append(units, c.Unit)
	}
	if len(units) == 0 {
		return nil
	}

	// Longest unit first so "mm/s" wins over "mm".
	sort.Slice(units, func(i, j int) bool {
		if len(units[i]) != len(units[j]) {
			return len(units[i]) > len(units[j])
		}
		return units[i] < units[j]
	})
	alts := make([]string, len(units))
	for i, u := range units {
		alts[i] = regexp.QuoteMeta(u)
	}
	t.matcher = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)\s?(` + strings.Join(alts, "|") + `)`)
	return nil
}

// maxWeightEpsilon bounds the tolerance on the weight sum.
const maxWeightEpsilon = 0.1

func validateScoring(cfg *Config) error {
	s := &cfg.Scoring
	if s.WeightEpsilon <= 0 || s.WeightEpsilon > maxWeightEpsilon {
		return configErr("scoring.weight_epsilon", "must be in (0, %v]", maxWeightEpsilon)
	}

	var sum float64
	for name := range s.Weights {
		if !isDimension(name) {
			return configErr("scoring.weights."+name, "unknown dimension")
		}
	}
	for _, d := range content.AllDimensions() {
		w, ok := s.Weights[string(d)]
		if !ok {
			return configErr("scoring.weights."+string(d), "required key missing")
		}
		if w < 0 {
			return configErr("scoring.weights."+string(d), "must not be negative")
		}
		sum += w
	}
	if !(math.Abs(sum-1.0) <= s.WeightEpsilon) {
		return configErr("scoring.weights", "weights sum to %v, expected 1.0 ± %v", sum, s.WeightEpsilon)
	}

	if s.MinimumOverall < 0 || s.MinimumOverall > 100 {
		return configErr("scoring.minimum_overall", "must be in [0, 100]")
	}
	for name := range s.Minimums {
		if !isDimension(name) {
			return configErr("scoring.minimums."+name, "unknown dimension")
		}
	}
	for _, d := range content.AllDimensions() {
		m, ok := s.Minimums[string(d)]
		if !ok {
			return configErr("scoring.minimums."+string(d), "required key missing")
		}
		if m < 0 || m > 100 {
			return configErr("scoring.minimums."+string(d), "must be in [0, 100]")
		}
	}

	switch s.FieldAggregation {
	case "":
		s.FieldAggregation = AggregateMin
	case AggregateMin, AggregateMean:
	default:
		return configErr("scoring.field_aggregation", "must be %q or %q", AggregateMin, AggregateMean)
	}
	return nil
}

func validatePhases(cfg *Config) error {
	for key, sev := range map[string]content.Severity{
		"phases.schema.fail_at": cfg.Phases.Schema.FailAt,
		"phases.audit.fail_at":  cfg.Phases.Audit.FailAt,
	} {
		if sev.Rank() == 0 {
			return configErr(key, "invalid severity %q", sev)
		}
	}
	return nil
}

func validateAutoFix(cfg *Config) error {
	for i, d := range cfg.AutoFix.Derivations {
		key := fmt.Sprintf("autofix.derivations[%d]", i)
		if _, err := content.ParseCategory(d.Category); err != nil {
			return wrapConfigErr(key+".category", "unknown category", err)
		}
		if d.Target == "" || d.From == "" || d.Target == d.From {
			return configErr(key, "target and from must be distinct field names")
		}
		if d.Factor == 0 || math.IsNaN(d.Factor) {
			return configErr(key+".factor", "must be non-zero")
		}
	}
	return nil
}

func compileSeverities(cfg *Config, k *koanf.Koanf) error {
	raw := k.Cut("severities").All()
	known := set(SeverityRules())
	cfg.severities = make(map[string]content.Severity, len(raw))
	for rule, v := range raw {
		key := SeveritySource(rule)
		if !known[rule] {
			return configErr(key, "unknown rule")
		}
		s, ok := v.(string)
		if !ok {
			return configErr(key, "expected a severity name, got %T", v)
		}
		sev, err := content.ParseSeverity(s)
		if err != nil {
			return wrapConfigErr(key, "invalid severity", err)
		}
		cfg.severities[rule] = sev
	}
	for _, rule := range SeverityRules() {
		if _, ok := cfg.severities[rule]; !ok {
			return configErr(SeveritySource(rule), "required key missing")
		}
	}
	return nil
}

func compilePatterns(key string, rules []PatternRule) ([]PatternRule, error) {
	out := make([]PatternRule, len(rules))
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.ID == "" || r.Pattern == "" {
			return nil, configErr(fmt.Sprintf("%s[%d]", key, i), "id and pattern are required")
		}
		if seen[r.ID] {
			return nil, configErr(fmt.Sprintf("%s[%d]", key, i), "duplicate id %q", r.ID)
		}
		seen[r.ID] = true
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, wrapConfigErr(fmt.Sprintf("%s[%d]", key, i), fmt.Sprintf("pattern %q does not compile", r.ID), err)
		}
		r.re = re
		out[i] = r
	}
	return out, nil
}

func checkBounds(key string, b Bounds) error {
	if b.Min < 0 || b.Min > b.Max {
		return configErr(key, "min %d must be non-negative and not exceed max %d", b.Min, b.Max)
	}
	return nil
}

func isDimension(name string) bool {
	for _, d := range content.AllDimensions() {
		if string(d) == name {
			return true
		}
	}
	return false
}

func set(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}

// rejectNonFinite fails on the first NaN or infinite number in the raw
// document. NaN compares false against every bound checked in compile.
func rejectNonFinite(key string, v any) error {
	switch v := v.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErr(key, "must be a finite number")
		}
	case float32:
		return rejectNonFinite(key, float64(v))
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child := name
			if key != "" {
				child = key + "." + name
			}
			if err := rejectNonFinite(child, v[name]); err != nil {
				return err
			}
		}
	case []any:
		for i, e := range v {
			if err := rejectNonFinite(fmt.Sprintf("%s[%d]", key, i), e); err != nil {
				return err
			}
		}
	}
	return nil
}
