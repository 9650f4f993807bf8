package schema

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// materialAdapter requires every laser setting to be numeric.
type materialAdapter struct{}

func (materialAdapter) Category() content.Category { return content.CategoryMaterial }

func (materialAdapter) Validate(c *Check) {
	f, ok := c.Record().Fields["laser_settings"]
	if !ok || f.Value.Kind != content.KindObject {
		return
	}
	for _, key := range sortedKeys(f.Value.Object) {
		if sub := f.Value.Object[key]; sub.Value.Kind != content.KindNumber {
			c.Emit(requirements.RuleCategoryShape, "laser_settings."+key, c.source("nested.laser_settings"),
				"laser setting must be numeric, got %s", sub.Value.Kind)
		}
	}
}

// compoundAdapter checks the chemical formula and the CAS registry number.
type compoundAdapter struct{}

func (compoundAdapter) Category() content.Category { return content.CategoryCompound }

func (compoundAdapter) Validate(c *Check) {
	fields := c.Record().Fields

	if f, ok := fields["formula"]; ok && f.Value.Kind == content.KindString {
		if re := c.Rules().Formula(); re != nil && !re.MatchString(f.Value.String) {
			c.Emit(requirements.RuleFormula, "formula", c.source("formula_pattern"),
				"formula %q does not match the declared pattern", f.Value.String)
		}
	}

	if f, ok := fields["cas_number"]; ok && f.Value.Kind == content.KindString {
		if !ValidCAS(f.Value.String) {
			c.Emit(requirements.RuleCASNumber, "cas_number", requirements.SeveritySource(requirements.RuleCASNumber),
				"%q is not a valid CAS registry number", f.Value.String)
		}
	}
}

// contaminantAdapter checks the removal method and affected material lists.
// In audit mode affected materials must resolve against the material index.
type contaminantAdapter struct{}

func (contaminantAdapter) Category() content.Category { return content.CategoryContaminant }

func (contaminantAdapter) Validate(c *Check) {
	fields := c.Record().Fields

	if f, ok := fields["removal_methods"]; ok {
		if _, valid := stringList(f.Value); !valid || len(f.Value.List) == 0 {
			c.Emit(requirements.RuleCategoryShape, "removal_methods", c.source("field_types.removal_methods"),
				"removal methods must be a non-empty list of names")
		}
	}

	f, ok := fields["affected_materials"]
	if !ok {
		return
	}
	materials, valid := stringList(f.Value)
	if !valid {
		c.Emit(requirements.RuleCategoryShape, "affected_materials", c.source("field_types.affected_materials"),
			"affected materials must be a list of material ids")
		return
	}
	if !c.Mode().Includes(content.ModeAudit) {
		return
	}
	index, ok := c.Requirements().Category(content.CategoryMaterial)
	if !ok || !index.HasIndex() {
		return
	}
	for _, id := range materials {
		if !index.IsMember(id) {
			c.Emit(requirements.RuleUnresolvedRef, "affected_materials", "categories.material.members",
				"material %q is not in the material index", id)
		}
	}
}

// stringList returns the items of a list of non-blank strings.
func stringList(v content.Value) ([]string, bool) {
	if v.Kind != content.KindList {
		return nil, false
	}
	out := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if item.Kind != content.KindString || strings.TrimSpace(item.String) == "" {
			return nil, false
		}
		out = append(out, item.String)
	}
	return out, true
}

var casPattern = regexp.MustCompile(`^(\d{2,7})-(\d{2})-(\d)$`)

// ValidCAS reports whether s is a well-formed CAS registry number with a
// correct check digit.
func ValidCAS(s string) bool {
	m := casPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return false
	}
	digits := m[1] + m[2]
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * (len(digits) - i)
	}
	return sum%10 == int(m[3][0]-'0')
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
