package content

import (
	"fmt"
	"strings"
)

// Severity is the ordinal classification of an Issue.
type Severity string

const (
	SeverityCritical      Severity = "critical"
	SeverityMajor         Severity = "major"
	SeverityMinor         Severity = "minor"
	SeverityInformational Severity = "informational"
)

// Rank orders severities; higher is more severe. Unknown severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityInformational:
		return 1
	}
	return 0
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// ParseSeverity converts a string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Rank() == 0 {
		return "", fmt.Errorf("unknown severity %q", s)
	}
	return sev, nil
}

// IssueCategory groups issues by the concern that raised them.
type IssueCategory string

const (
	IssueSchema       IssueCategory = "schema"
	IssueArchitecture IssueCategory = "architecture"
	IssueTextQuality  IssueCategory = "text-quality"
	IssueVoice        IssueCategory = "voice"
	IssueSynthetic    IssueCategory = "synthetic-detection"
	IssueSecurity     IssueCategory = "security"
)

// FixKind names a declarative correction the orchestrator may apply.
type FixKind string

const (
	FixNone        FixKind = ""
	FixEnumCase    FixKind = "normalize_enum_case"
	FixDeriveField FixKind = "derive_field"
)

// Issue is one detected problem. Source names the requirement path that
// triggered it so a failed gate can be remediated without a debugger.
type Issue struct {
	Severity Severity      `json:"severity"`
	Category IssueCategory `json:"category"`
	Field    string        `json:"field"`
	Message  string        `json:"message"`
	Source   string        `json:"source"`
	Fix      FixKind       `json:"fix,omitempty"`
}

// NewIssue builds an Issue.
func NewIssue(sev Severity, cat IssueCategory, field, source, format string, args ...any) Issue {
	return Issue{
		Severity: sev,
		Category: cat,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Source:   source,
	}
}

// WithFix returns a copy of the issue carrying a fix hint.
func (i Issue) WithFix(kind FixKind) Issue {
	i.Fix = kind
	return i
}

// Validate checks the issue carries a severity and a category.
func (i Issue) Validate() error {
	if i.Severity.Rank() == 0 {
		return fmt.Errorf("issue %q: invalid severity %q", i.Message, i.Severity)
	}
	if i.Category == "" {
		return fmt.Errorf("issue %q: category is required", i.Message)
	}
	return nil
}

// String renders the issue as a report line.
func (i Issue) String() string {
	field := i.Field
	if field == "" {
		field = "record"
	}
	return fmt.Sprintf("[%s][%s] %s: %s (source: %s)",
		strings.ToUpper(string(i.Severity)), strings.ToUpper(string(i.Category)), field, i.Message, i.Source)
}

// MaxSeverity returns the most severe severity among issues, or "" if none.
func MaxSeverity(issues []Issue) Severity {
	var max Severity
	for _, i := range issues {
		if i.Severity.Rank() > max.Rank() {
			max = i.Severity
		}
	}
	return max
}

// HasCritical reports whether any issue is critical.
func HasCritical(issues []Issue) bool {
	return MaxSeverity(issues) == SeverityCritical
}

// CountBySeverity tallies issues per severity.
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int)
	for _, i := range issues {
		counts[i.Severity]++
	}
	return counts
}
