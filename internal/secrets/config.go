package secrets

import (
	"fmt"
	"regexp"
)

// Config configures the detector.
type Config struct {
	// Enabled controls whether detection is active.
	Enabled bool `koanf:"enabled"`

	// DefaultRules prepends the built-in rule set to Rules.
	DefaultRules bool `koanf:"default_rules"`

	// Rules defines additional detection rules.
	Rules []Rule `koanf:"rules"`

	// AllowList contains patterns for matches that are not credentials
	// (documentation placeholders, sample keys).
	AllowList []string `koanf:"allow_list"`

	// compiled patterns (populated by Validate)
	compiledRules     []*compiledRule
	compiledAllowList []*regexp.Regexp
}

// Rule defines a credential detection rule.
type Rule struct {
	// ID is the unique identifier for this rule
	ID string `koanf:"id"`

	// Description explains what this rule detects
	Description string `koanf:"description"`

	// Pattern is the regex pattern to match credentials
	Pattern string `koanf:"pattern"`

	// Keywords are optional keywords that must be present for the rule to apply
	Keywords []string `koanf:"keywords"`

	// Severity indicates the importance (high, medium, low)
	Severity string `koanf:"severity"`
}

type compiledRule struct {
	Rule
	pattern  *regexp.Regexp
	keywords []*regexp.Regexp
}

// DefaultConfig returns an enabled configuration with the built-in rules.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		DefaultRules: true,
		AllowList:    []string{},
	}
}

// Validate validates and compiles the configuration. It is idempotent.
func (c *Config) Validate() error {
	c.compiledRules = nil
	c.compiledAllowList = nil
	if !c.Enabled {
		return nil
	}

	rules := c.Rules
	if c.DefaultRules {
		rules = append(BuiltinRules(), c.Rules...)
	}
	if len(rules) == 0 {
		return fmt.Errorf("secrets: enabled with no rules")
	}

	seen := make(map[string]bool, len(rules))
	c.compiledRules = make([]*compiledRule, 0, len(rules))
	for i, rule := range rules {
		if rule.ID == "" {
			return fmt.Errorf("rule %d: ID is required", i)
		}
		if seen[rule.ID] {
			return fmt.Errorf("rule %s: duplicate ID", rule.ID)
		}
		seen[rule.ID] = true
		if rule.Pattern == "" {
			return fmt.Errorf("rule %s: pattern is required", rule.ID)
		}

		pattern, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("rule %s: invalid pattern: %w", rule.ID, err)
		}
		if rule.Severity == "" {
			rule.Severity = "high"
		}

		compiled := &compiledRule{
			Rule:     rule,
			pattern:  pattern,
			keywords: make([]*regexp.Regexp, 0, len(rule.Keywords)),
		}
		for _, kw := range rule.Keywords {
			compiled.keywords = append(compiled.keywords, regexp.MustCompile("(?i)"+regexp.QuoteMeta(kw)))
		}
		c.compiledRules = append(c.compiledRules, compiled)
	}

	c.compiledAllowList = make([]*regexp.Regexp, 0, len(c.AllowList))
	for i, pattern := range c.AllowList {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("allow_list %d: invalid pattern: %w", i, err)
		}
		c.compiledAllowList = append(c.compiledAllowList, compiled)
	}

	return nil
}
