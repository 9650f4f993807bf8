package requirements

// Severity rule identifiers. Each names a key under "severities" in the
// requirements document; every one must be present at load time.
const (
	RuleUnknownCategory   = "schema.unknown_category"
	RuleMissingRequired   = "schema.missing_required"
	RuleForbiddenField    = "schema.forbidden_field"
	RuleTypeMismatch      = "schema.type_mismatch"
	RuleUnknownField      = "schema.unknown_field"
	RuleNestedShape       = "schema.nested_shape"
	RuleEnumValue         = "schema.enum_value"
	RuleMissingText       = "schema.missing_text"
	RuleCategoryShape     = "schema.category_shape"
	RuleFormula           = "schema.formula"
	RuleCASNumber         = "schema.cas_number"
	RuleMissingProvenance = "schema.missing_provenance"
	RuleIndexMembership   = "schema.index_membership"
	RuleUnresolvedRef     = "schema.unresolved_reference"

	RuleAuditForbidden  = "audit.forbidden_field"
	RuleOutOfRange      = "audit.out_of_range"
	RuleInvertedRange   = "audit.inverted_range"
	RuleMissingSource   = "audit.missing_source"
	RuleForeignIndex    = "audit.foreign_index"
	RuleUnindexed       = "audit.unindexed"
	RuleDerivedMismatch = "audit.derived_mismatch"
	RuleCredentialLeak  = "audit.credential_leak"

	RuleSentenceCount      = "quality.sentence_count"
	RuleParagraphCount     = "quality.paragraph_count"
	RuleLineLength         = "quality.line_length"
	RuleArtifact           = "quality.artifact"
	RuleUnknownProfile     = "quality.unknown_voice_profile"
	RuleVoiceContamination = "quality.voice_contamination"
	RuleSyntheticPattern   = "quality.synthetic_pattern"
	RuleInconsistentClaim  = "quality.inconsistent_claim"
	RuleScoringFailure     = "quality.scoring_failure"
)

// SeverityRules lists every rule identifier the pipeline emits.
func SeverityRules() []string {
	return []string{
		RuleUnknownCategory, RuleMissingRequired, RuleForbiddenField, RuleTypeMismatch,
		RuleUnknownField, RuleNestedShape, RuleEnumValue, RuleMissingText,
		RuleCategoryShape, RuleFormula, RuleCASNumber, RuleMissingProvenance,
		RuleIndexMembership, RuleUnresolvedRef,

		RuleAuditForbidden, RuleOutOfRange, RuleInvertedRange, RuleMissingSource,
		RuleForeignIndex, RuleUnindexed, RuleDerivedMismatch, RuleCredentialLeak,

		RuleSentenceCount, RuleParagraphCount, RuleLineLength, RuleArtifact,
		RuleUnknownProfile, RuleVoiceContamination, RuleSyntheticPattern,
		RuleInconsistentClaim, RuleScoringFailure,
	}
}

// Synthetic pattern categories.
const (
	SyntheticBoilerplate     = "boilerplate"
	SyntheticPrecision       = "precision"
	SyntheticRepeatedOpeners = "repeated_openers"
)

// Field aggregation strategies for per-dimension scores across text fields.
const (
	AggregateMin  = "min"
	AggregateMean = "mean"
)

// requiredKeys must exist in every requirements document.
var requiredKeys = []string{
	"version",
	"categories",
	"schema.mode",
	"text",
	"structural",
	"voice.profiles",
	"synthetic",
	"technical",
	"scoring.weights",
	"scoring.minimum_overall",
	"scoring.minimums",
	"scoring.weight_epsilon",
	"severities",
	"phases",
}
