package schema

import (
	"math"
	"strings"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// CategoryAdapter holds the checks specific to one record category.
type CategoryAdapter interface {
	// Category returns the category the adapter validates.
	Category() content.Category

	// Validate runs the category's own checks. It is called from enhanced
	// mode upward and may consult c.Mode() for audit-only checks.
	Validate(c *Check)
}

// Validator checks records against the category rules of a requirements
// config. It is safe for concurrent use once constructed.
type Validator struct {
	req      *requirements.Config
	adapters map[content.Category]CategoryAdapter
}

// DefaultAdapters returns the adapters for the built-in categories.
func DefaultAdapters() []CategoryAdapter {
	return []CategoryAdapter{materialAdapter{}, compoundAdapter{}, contaminantAdapter{}}
}

// New creates a Validator. With no adapters the defaults are used.
func New(req *requirements.Config, adapters ...CategoryAdapter) *Validator {
	if len(adapters) == 0 {
		adapters = DefaultAdapters()
	}
	v := &Validator{
		req:      req,
		adapters: make(map[content.Category]CategoryAdapter, len(adapters)),
	}
	for _, a := range adapters {
		v.adapters[a.Category()] = a
	}
	return v
}

// Validate checks rec at the given strictness. An empty mode selects the
// requirements' default mode.
func (v *Validator) Validate(rec *content.Record, mode content.Mode) content.ValidationResult {
	if mode == "" {
		mode = v.req.SchemaMode()
	}
	c := &Check{req: v.req, record: rec, mode: mode}
	v.run(c)

	return content.ValidationResult{
		Phase:  content.PhaseSchema,
		Status: content.StatusFor(c.issues, v.req.Phases.Schema.FailAt),
		Issues: c.issues,
	}
}

func (v *Validator) run(c *Check) {
	rules, ok := v.req.Category(c.record.Category)
	if !ok {
		c.Emit(requirements.RuleUnknownCategory, "category", "categories",
			"category %q has no rules", c.record.Category)
		return
	}
	c.rules = rules

	checkBasic(c)
	if c.mode.Includes(content.ModeEnhanced) {
		checkEnhanced(c)
		if a, ok := v.adapters[c.record.Category]; ok {
			a.Validate(c)
		}
	}
	if c.mode.Includes(content.ModeResearch) {
		checkProvenance(c)
	}
	if c.mode.Includes(content.ModeAudit) {
		checkMembership(c)
	}
}

func checkBasic(c *Check) {
	rec := c.record

	for _, name := range rec.FieldNames() {
		if c.rules.IsForbidden(name) {
			c.Emit(requirements.RuleForbiddenField, name, c.source("forbidden_fields"),
				"field belongs to an upstream stage and must not appear on a final record")
		}
	}
	for _, name := range rec.TextNames() {
		if c.rules.IsForbidden(name) {
			c.Emit(requirements.RuleForbiddenField, name, c.source("forbidden_fields"),
				"text field belongs to an upstream stage and must not appear on a final record")
		}
	}

	for _, name := range c.rules.RequiredFields {
		if _, ok := rec.Fields[name]; !ok {
			c.Emit(requirements.RuleMissingRequired, name, c.source("required_fields"), "required field is missing")
		}
	}

	for _, name := range rec.FieldNames() {
		f := rec.Fields[name]
		if want, ok := c.rules.Kind(name); ok && f.Value.Kind != want {
			c.Emit(requirements.RuleTypeMismatch, name, c.source("field_types."+name),
				"expected %s, got %s", want, f.Value.Kind)
		}
		if !c.rules.IsAllowed(name) && !c.rules.IsForbidden(name) {
			c.Emit(requirements.RuleUnknownField, name, c.source("optional_fields"), "field is not declared for this category")
		}
	}
}

func checkEnhanced(c *Check) {
	rec := c.record

	for _, name := range sortedKeys(c.rules.Nested) {
		f, ok := rec.Fields[name]
		if !ok {
			continue
		}
		if f.Value.Kind != content.KindObject {
			if _, declared := c.rules.Kind(name); !declared {
				c.Emit(requirements.RuleNestedShape, name, c.source("nested."+name), "expected a nested object, got %s", f.Value.Kind)
			}
			continue
		}
		for _, key := range c.rules.Nested[name] {
			if _, ok := f.Value.Object[key]; !ok {
				c.Emit(requirements.RuleNestedShape, name+"."+key, c.source("nested."+name), "required nested key is missing")
			}
		}
	}

	for _, name := range sortedKeys(c.rules.Enums) {
		f, ok := rec.Fields[name]
		if !ok || f.Value.Kind != content.KindString {
			continue
		}
		allowed := c.rules.Enums[name]
		if contains(allowed, f.Value.String) {
			continue
		}
		issue := content.NewIssue(c.req.Severity(requirements.RuleEnumValue), content.IssueSchema, name,
			c.source("enums."+name), "value %q is not one of %s", f.Value.String, strings.Join(allowed, ", "))
		if _, ok := FoldEnum(allowed, f.Value.String); ok {
			issue = issue.WithFix(content.FixEnumCase)
		}
		c.add(issue)
	}

	for _, name := range c.rules.TextFields {
		if strings.TrimSpace(rec.Text[name]) == "" {
			c.Emit(requirements.RuleMissingText, name, c.source("text_fields"), "required text field is missing or empty")
		}
	}
}

func checkProvenance(c *Check) {
	for _, name := range c.record.FieldNames() {
		f := c.record.Fields[name]
		if f.Value.Kind != content.KindNumber {
			continue
		}
		source := requirements.SeveritySource(requirements.RuleMissingProvenance)
		switch {
		case f.Source == "":
			c.Emit(requirements.RuleMissingProvenance, name, source, "numeric field has no source")
		case f.Confidence == nil:
			c.Emit(requirements.RuleMissingProvenance, name, source, "numeric field has no confidence")
		case math.IsNaN(*f.Confidence) || *f.Confidence < 0 || *f.Confidence > 1:
			c.Emit(requirements.RuleMissingProvenance, name, source, "confidence %v is outside [0, 1]", *f.Confidence)
		}
	}
}

func checkMembership(c *Check) {
	if c.rules.HasIndex() && !c.rules.IsMember(c.record.ID) {
		c.Emit(requirements.RuleIndexMembership, "id", c.source("members"),
			"record %q is not listed in the %s index", c.record.ID, c.record.Category)
	}
}

// FoldEnum returns the allowed value equal to v under case folding.
func FoldEnum(allowed []string, v string) (string, bool) {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(v), a) {
			return a, true
		}
	}
	return "", false
}

func contains(items []string, v string) bool {
	for _, i := range items {
		if i == v {
			return true
		}
	}
	return false
}
