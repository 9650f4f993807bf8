package requirements

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/secrets"
)

// document mirrors the requirements file. Severities are read separately
// because rule identifiers contain the key delimiter.
type document struct {
	Version    int                      `koanf:"version"`
	Categories map[string]CategoryRules `koanf:"categories"`
	Schema     SchemaRules              `koanf:"schema"`
	Text       TextRules                `koanf:"text"`
	Structural StructuralRules          `koanf:"structural"`
	Voice      VoiceRules               `koanf:"voice"`
	Synthetic  SyntheticRules           `koanf:"synthetic"`
	Technical  TechnicalRules           `koanf:"technical"`
	Scoring    ScoringRules             `koanf:"scoring"`
	Phases     PhaseRules               `koanf:"phases"`
	AutoFix    AutoFixRules             `koanf:"autofix"`
	Secrets    secrets.Config           `koanf:"secrets"`
}

// CategoryRules are the field rules for one record category.
type CategoryRules struct {
	RequiredFields  []string            `koanf:"required_fields"`
	OptionalFields  []string            `koanf:"optional_fields"`
	ForbiddenFields []string            `koanf:"forbidden_fields"`
	FieldTypes      map[string]string   `koanf:"field_types"`
	Enums           map[string][]string `koanf:"enums"`
	Nested          map[string][]string `koanf:"nested"`
	Ranges          map[string]Range    `koanf:"ranges"`
	Members         []string            `koanf:"members"`
	FormulaPattern  string              `koanf:"formula_pattern"`
	TextFields      []string            `koanf:"text_fields"`

	kinds     map[string]content.Kind
	required  map[string]bool
	allowed   map[string]bool
	forbidden map[string]bool
	members   map[string]bool
	formula   *regexp.Regexp
}

// Range bounds a numeric field.
type Range struct {
	Min  float64 `koanf:"min"`
	Max  float64 `koanf:"max"`
	Unit string  `koanf:"unit"`
}

// Contains reports whether v lies within the range, inclusive.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// IsRequired reports whether field must be present.
func (c CategoryRules) IsRequired(field string) bool { return c.required[field] }

// IsForbidden reports whether field must never appear on a final record.
func (c CategoryRules) IsForbidden(field string) bool { return c.forbidden[field] }

// IsAllowed reports whether field is a declared required or optional field.
func (c CategoryRules) IsAllowed(field string) bool { return c.allowed[field] }

// IsMember reports whether id is listed in the category's membership index.
func (c CategoryRules) IsMember(id string) bool { return c.members[id] }

// HasIndex reports whether the category declares a membership index.
func (c CategoryRules) HasIndex() bool { return len(c.members) > 0 }

// Kind returns the declared type of field.
func (c CategoryRules) Kind(field string) (content.Kind, bool) {
	k, ok := c.kinds[field]
	return k, ok
}

// Range returns the numeric bounds of field.
func (c CategoryRules) Range(field string) (Range, bool) {
	r, ok := c.Ranges[field]
	return r, ok
}

// Formula returns the compiled formula pattern, or nil when none is declared.
func (c CategoryRules) Formula() *regexp.Regexp { return c.formula }

// SchemaRules configures schema validation.
type SchemaRules struct {
	// Mode is the default strictness used when a caller does not choose one.
	Mode string `koanf:"mode"`
}

// TextRules configures text segmentation.
type TextRules struct {
	// Abbreviations end with a period that does not terminate a sentence.
	Abbreviations []string `koanf:"abbreviations"`

	abbrev map[string]bool
}

// IsAbbreviation reports whether word (including its trailing period) is a
// registered abbreviation. Matching is case-insensitive.
func (t TextRules) IsAbbreviation(word string) bool { return t.abbrev[strings.ToLower(word)] }

// Bounds is an inclusive integer interval.
type Bounds struct {
	Min int `koanf:"min"`
	Max int `koanf:"max"`
}

// Contains reports whether n lies within the bounds.
func (b Bounds) Contains(n int) bool { return n >= b.Min && n <= b.Max }

// StructuralRules configures the structural-quality scorer.
type StructuralRules struct {
	Sentences         Bounds        `koanf:"sentences"`
	Paragraphs        Bounds        `koanf:"paragraphs"`
	MaxLineLength     int           `koanf:"max_line_length"`
	Penalties         Penalties     `koanf:"penalties"`
	MaxPenaltyPerType float64       `koanf:"max_penalty_per_type"`
	ForbiddenPatterns []PatternRule `koanf:"forbidden_patterns"`
}

// Penalties are the score deductions per structural violation.
type Penalties struct {
	SentenceCount  float64 `koanf:"sentence_count"`
	ParagraphCount float64 `koanf:"paragraph_count"`
	LineLength     float64 `koanf:"line_length"`
	Artifact       float64 `koanf:"artifact"`
}

// PatternRule is one row of a declarative pattern table.
type PatternRule struct {
	ID       string  `koanf:"id"`
	Pattern  string  `koanf:"pattern"`
	Weight   float64 `koanf:"weight"`
	Category string  `koanf:"category"`
	Kind     string  `koanf:"kind"`

	re *regexp.Regexp
}

// Count returns the number of non-overlapping matches in text.
func (p PatternRule) Count(text string) int {
	if p.re == nil {
		return 0
	}
	return len(p.re.FindAllStringIndex(text, -1))
}

// Regexp returns the compiled pattern.
func (p PatternRule) Regexp() *regexp.Regexp { return p.re }

// VoiceRules configures the voice-authenticity scorer.
type VoiceRules struct {
	// Saturation is the matched marker weight that counts as fully authentic.
	Saturation          float64                 `koanf:"saturation"`
	ContaminationFactor float64                 `koanf:"contamination_factor"`
	MaxHitsPerMarker    int                     `koanf:"max_hits_per_marker"`
	Profiles            map[string]VoiceProfile `koanf:"profiles"`
}

// VoiceProfile is the marker table of one author voice.
type VoiceProfile struct {
	Markers []PatternRule `koanf:"markers"`
}

// Profile returns the named voice profile.
func (v VoiceRules) Profile(id string) (VoiceProfile, bool) {
	p, ok := v.Profiles[id]
	return p, ok
}

// ProfileIDs returns the profile identifiers in sorted order.
func (v VoiceRules) ProfileIDs() []string {
	ids := make([]string, 0, len(v.Profiles))
	for id := range v.Profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SyntheticRules configures the synthetic-detectability scorer.
type SyntheticRules struct {
	Categories              map[string]CategoryPenalty `koanf:"categories"`
	Patterns                []PatternRule              `koanf:"patterns"`
	RepeatedOpenerThreshold int                        `koanf:"repeated_opener_threshold"`
}

// CategoryPenalty is the per-hit weight and the cap of one synthetic category.
type CategoryPenalty struct {
	Weight float64 `koanf:"weight"`
	Cap    float64 `koanf:"cap"`
}

// Penalty returns min(weight × hits, cap).
func (c CategoryPenalty) Penalty(hits int) float64 {
	p := c.Weight * float64(hits)
	if p > c.Cap {
		return c.Cap
	}
	return p
}

// TechnicalRules configures the technical-accuracy scorer.
type TechnicalRules struct {
	RelativeTolerance float64     `koanf:"relative_tolerance"`
	NoClaimsScore     float64     `koanf:"no_claims_score"`
	Claims            []ClaimRule `koanf:"claims"`

	byUnit  map[string]ClaimRule
	matcher *regexp.Regexp
}

// ClaimRule maps a unit written in text to the structured field it asserts.
type ClaimRule struct {
	Unit      string   `koanf:"unit"`
	Field     string   `koanf:"field"`
	Tolerance *float64 `koanf:"tolerance"`
}

// Claim returns the rule for unit.
func (t TechnicalRules) Claim(unit string) (ClaimRule, bool) {
	c, ok := t.byUnit[unit]
	return c, ok
}

// Matcher returns the compiled claim matcher. Group 1 is the number and
// group 2 the unit.
func (t TechnicalRules) Matcher() *regexp.Regexp { return t.matcher }

// ToleranceFor returns the claim's own tolerance or the section default.
func (t TechnicalRules) ToleranceFor(c ClaimRule) float64 {
	if c.Tolerance != nil {
		return *c.Tolerance
	}
	return t.RelativeTolerance
}

// ScoringRules configures aggregation and the quality gate.
type ScoringRules struct {
	Weights          map[string]float64 `koanf:"weights"`
	WeightEpsilon    float64            `koanf:"weight_epsilon"`
	MinimumOverall   float64            `koanf:"minimum_overall"`
	Minimums         map[string]float64 `koanf:"minimums"`
	FieldAggregation string             `koanf:"field_aggregation"`
}

// Weight returns the weight of dimension d.
func (s ScoringRules) Weight(d content.Dimension) float64 { return s.Weights[string(d)] }

// Minimum returns the minimum acceptable score of dimension d.
func (s ScoringRules) Minimum(d content.Dimension) float64 { return s.Minimums[string(d)] }

// PhaseRules configures per-phase failure thresholds.
type PhaseRules struct {
	Schema PhaseThreshold `koanf:"schema"`
	Audit  PhaseThreshold `koanf:"audit"`
}

// PhaseThreshold fails a phase when any issue reaches FailAt.
type PhaseThreshold struct {
	FailAt content.Severity `koanf:"fail_at"`
}

// AutoFixRules lists the declarative corrections the orchestrator may apply.
type AutoFixRules struct {
	NormalizeEnumCase bool         `koanf:"normalize_enum_case"`
	Derivations       []Derivation `koanf:"derivations"`
}

// Derivation declares Target = From × Factor for one category.
type Derivation struct {
	Category string  `koanf:"category"`
	Target   string  `koanf:"target"`
	From     string  `koanf:"from"`
	Factor   float64 `koanf:"factor"`
}

// DerivationsFor returns the derivations declared for category.
func (a AutoFixRules) DerivationsFor(category content.Category) []Derivation {
	var out []Derivation
	for _, d := range a.Derivations {
		if d.Category == string(category) {
			out = append(out, d)
		}
	}
	return out
}
