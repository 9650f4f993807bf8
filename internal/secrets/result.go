package secrets

import "sort"

// Result contains the findings for one piece of text.
type Result struct {
	// Findings contains the detected credentials (without actual values)
	Findings []Finding `json:"findings,omitempty"`

	// ByRule maps rule IDs to finding counts
	ByRule map[string]int `json:"by_rule,omitempty"`
}

// Finding represents a detected credential.
type Finding struct {
	RuleID      string `json:"rule_id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`

	// Line is the line number (1-indexed)
	Line int `json:"line"`
}

// HasFindings returns true if any credentials were found.
func (r *Result) HasFindings() bool {
	return len(r.Findings) > 0
}

// RuleIDs returns the unique rule IDs that matched, sorted.
func (r *Result) RuleIDs() []string {
	ids := make([]string, 0, len(r.ByRule))
	for id := range r.ByRule {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
