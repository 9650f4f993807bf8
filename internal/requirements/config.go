package requirements

import (
	"fmt"

	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/secrets"
)

// Config is a loaded, validated and compiled requirements document.
//
// A Config is immutable after Load returns. Callers must treat the exported
// sections as read-only; they are exposed for direct access by the
// validators and scorers.
type Config struct {
	Version    int
	Categories map[content.Category]CategoryRules
	Schema     SchemaRules
	Text       TextRules
	Structural StructuralRules
	Voice      VoiceRules
	Synthetic  SyntheticRules
	Technical  TechnicalRules
	Scoring    ScoringRules
	Phases     PhaseRules
	AutoFix    AutoFixRules

	k          *koanf.Koanf
	severities map[string]content.Severity
	mode       content.Mode
	detector   secrets.Detector
}

// Get returns the raw value at a dotted key. It fails with a
// ConfigurationError when the key is absent.
func (c *Config) Get(key string) (any, error) {
	if !c.k.Exists(key) {
		return nil, configErr(key, "key not found")
	}
	return c.k.Get(key), nil
}

// Float returns the numeric value at key.
func (c *Config) Float(key string) (float64, error) {
	v, err := c.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, configErr(key, "expected a number, got %T", v)
}

// Int returns the integer value at key.
func (c *Config) Int(key string) (int, error) {
	f, err := c.Float(key)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, configErr(key, "expected an integer, got %v", f)
	}
	return int(f), nil
}

// String returns the string value at key.
func (c *Config) String(key string) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", configErr(key, "expected a string, got %T", v)
	}
	return s, nil
}

// Strings returns the string list at key.
func (c *Config) Strings(key string) ([]string, error) {
	v, err := c.Get(key)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, configErr(key, "expected a list, got %T", v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, configErr(fmt.Sprintf("%s[%d]", key, i), "expected a string, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// Keys returns every leaf key in the document, sorted.
func (c *Config) Keys() []string {
	return c.k.Keys()
}

// Category returns the rules of a record category.
func (c *Config) Category(cat content.Category) (CategoryRules, bool) {
	r, ok := c.Categories[cat]
	return r, ok
}

// Severity returns the configured severity of a rule. Every identifier in
// SeverityRules is guaranteed present; any other identifier is a programming
// error and panics.
func (c *Config) Severity(rule string) content.Severity {
	sev, ok := c.severities[rule]
	if !ok {
		panic(fmt.Sprintf("requirements: unregistered severity rule %q", rule))
	}
	return sev
}

// SeveritySource returns the requirement path that sets a rule's severity.
func SeveritySource(rule string) string {
	return "severities." + rule
}

// SchemaMode returns the default schema validation mode.
func (c *Config) SchemaMode() content.Mode {
	return c.mode
}

// SecretDetector returns the compiled credential detector.
func (c *Config) SecretDetector() secrets.Detector {
	return c.detector
}
