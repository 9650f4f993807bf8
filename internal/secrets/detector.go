package secrets

import (
	"sort"
	"strings"
)

// Detector finds credentials in text.
type Detector interface {
	// Check reports every credential found in text.
	Check(text string) *Result

	// IsEnabled returns whether detection is enabled.
	IsEnabled() bool
}

type detector struct {
	config *Config
}

// New creates a Detector with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(cfg *Config) (Detector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return NoopDetector{}, nil
	}
	return &detector{config: cfg}, nil
}

// MustNew creates a Detector, panicking on error.
func MustNew(cfg *Config) Detector {
	d, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

// Check reports every credential found in text, ordered by position.
func (d *detector) Check(text string) *Result {
	result := &Result{ByRule: make(map[string]int)}

	for _, rule := range d.config.compiledRules {
		if !rule.applies(text) {
			continue
		}
		for _, match := range rule.pattern.FindAllStringIndex(text, -1) {
			if d.isAllowed(text[match[0]:match[1]]) {
				continue
			}
			result.Findings = append(result.Findings, Finding{
				RuleID:      rule.ID,
				Description: rule.Description,
				Severity:    rule.Severity,
				StartIndex:  match[0],
				EndIndex:    match[1],
				Line:        strings.Count(text[:match[0]], "\n") + 1,
			})
			result.ByRule[rule.ID]++
		}
	}

	sort.SliceStable(result.Findings, func(i, j int) bool {
		return result.Findings[i].StartIndex < result.Findings[j].StartIndex
	})
	return result
}

// IsEnabled returns true.
func (d *detector) IsEnabled() bool {
	return true
}

func (r *compiledRule) applies(text string) bool {
	if len(r.keywords) == 0 {
		return true
	}
	for _, kw := range r.keywords {
		if kw.MatchString(text) {
			return true
		}
	}
	return false
}

func (d *detector) isAllowed(match string) bool {
	for _, pattern := range d.config.compiledAllowList {
		if pattern.MatchString(match) {
			return true
		}
	}
	return false
}

// NoopDetector finds nothing. It is returned for disabled configurations.
type NoopDetector struct{}

// Check returns an empty result.
func (NoopDetector) Check(string) *Result {
	return &Result{ByRule: map[string]int{}}
}

// IsEnabled returns false.
func (NoopDetector) IsEnabled() bool {
	return false
}

var (
	_ Detector = (*detector)(nil)
	_ Detector = NoopDetector{}
)
