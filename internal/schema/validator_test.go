package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/content/fixtures"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	req, err := requirements.Default()
	require.NoError(t, err)
	return New(req)
}

func fieldsOf(issues []content.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Field)
	}
	return out
}

func TestValidate_GoodRecords(t *testing.T) {
	v := newValidator(t)
	for _, rec := range fixtures.Records() {
		for _, mode := range content.AllModes() {
			t.Run(rec.ID+"/"+string(mode), func(t *testing.T) {
				result := v.Validate(rec, mode)
				assert.Equal(t, content.PhaseSchema, result.Phase)
				assert.Equal(t, content.StatusPass, result.Status)
				assert.Empty(t, result.Issues)
			})
		}
	}
}

func TestValidate_Basic(t *testing.T) {
	v := newValidator(t)

	t.Run("unknown category is critical", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Category = "mineral"
		result := v.Validate(rec, content.ModeBasic)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, content.SeverityCritical, result.Issues[0].Severity)
		assert.Equal(t, content.StatusFail, result.Status)
	})

	t.Run("forbidden field yields exactly one critical issue", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Fields["ai_prompt"] = content.Str("write about aluminum")
		result := v.Validate(rec, content.ModeAudit)
		require.Len(t, result.Issues, 1)
		issue := result.Issues[0]
		assert.Equal(t, content.SeverityCritical, issue.Severity)
		assert.Equal(t, content.IssueSchema, issue.Category)
		assert.Equal(t, "ai_prompt", issue.Field)
		assert.Equal(t, "categories.material.forbidden_fields", issue.Source)
	})

	t.Run("forbidden text field", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Text["draft_text"] = "first pass"
		result := v.Validate(rec, content.ModeBasic)
		assert.Equal(t, []string{"draft_text"}, fieldsOf(result.Issues))
	})

	t.Run("missing required, type mismatch, unknown field", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		delete(rec.Fields, "density")
		rec.Fields["wavelength"] = content.Str("1064nm")
		rec.Fields["colour"] = content.Str("silver")
		result := v.Validate(rec, content.ModeBasic)

		assert.Equal(t, content.StatusFail, result.Status)
		assert.ElementsMatch(t, []string{"density", "wavelength", "colour"}, fieldsOf(result.Issues))
		for _, i := range result.Issues {
			switch i.Field {
			case "density", "wavelength":
				assert.Equal(t, content.SeverityMajor, i.Severity)
			case "colour":
				assert.Equal(t, content.SeverityMinor, i.Severity)
			}
		}
	})

	t.Run("minor issues alone pass", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Fields["colour"] = content.Str("silver")
		result := v.Validate(rec, content.ModeBasic)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, content.StatusPass, result.Status)
	})
}

func TestValidate_Enhanced(t *testing.T) {
	v := newValidator(t)

	t.Run("enum case mismatch carries a fix", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Fields["category_class"] = content.Str("Metal")

		assert.Empty(t, v.Validate(rec, content.ModeBasic).Issues, "enums are not checked in basic mode")

		result := v.Validate(rec, content.ModeEnhanced)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, content.FixEnumCase, result.Issues[0].Fix)
		assert.Equal(t, "categories.material.enums.category_class", result.Issues[0].Source)
	})

	t.Run("unknown enum value has no fix", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Fields["category_class"] = content.Str("plastic")
		result := v.Validate(rec, content.ModeEnhanced)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, content.FixNone, result.Issues[0].Fix)
	})

	t.Run("nested shape and numeric laser settings", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Fields["laser_settings"] = content.Field{Value: content.ObjectValue(map[string]content.Field{
			"power":      content.Str("high"),
			"wavelength": content.Num(1064),
		})}
		result := v.Validate(rec, content.ModeEnhanced)
		assert.ElementsMatch(t, []string{"laser_settings.spot_size", "laser_settings.power"}, fieldsOf(result.Issues))
	})

	t.Run("missing text field", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.Text["description"] = "   "
		result := v.Validate(rec, content.ModeEnhanced)
		assert.Equal(t, []string{"description"}, fieldsOf(result.Issues))
	})

	t.Run("compound formula and CAS number", func(t *testing.T) {
		rec := fixtures.GoodCompound()
		rec.Fields["formula"] = content.Str("al2o3")
		rec.Fields["cas_number"] = content.Str("1344-28-2")
		result := v.Validate(rec, content.ModeEnhanced)
		assert.ElementsMatch(t, []string{"formula", "cas_number"}, fieldsOf(result.Issues))
	})

	t.Run("contaminant removal methods", func(t *testing.T) {
		rec := fixtures.GoodContaminant()
		rec.Fields["removal_methods"] = content.Field{Value: content.ListValue()}
		result := v.Validate(rec, content.ModeEnhanced)
		assert.Equal(t, []string{"removal_methods"}, fieldsOf(result.Issues))
	})
}

func TestValidate_ResearchGrade(t *testing.T) {
	v := newValidator(t)
	rec := fixtures.GoodMaterial()
	rec.Fields["melting_point"] = content.Num(660)
	bad := 1.5
	rec.Fields["density"] = content.Field{Value: content.NumberValue(2.7), Source: "ASM", Confidence: &bad}

	assert.Empty(t, v.Validate(rec, content.ModeEnhanced).Issues)

	result := v.Validate(rec, content.ModeResearch)
	assert.ElementsMatch(t, []string{"melting_point", "density"}, fieldsOf(result.Issues))
	assert.Equal(t, content.StatusFail, result.Status)
}

func TestValidate_Audit(t *testing.T) {
	v := newValidator(t)

	t.Run("record missing from index", func(t *testing.T) {
		rec := fixtures.GoodMaterial()
		rec.ID = "unobtainium"
		assert.Empty(t, v.Validate(rec, content.ModeResearch).Issues)

		result := v.Validate(rec, content.ModeAudit)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, "categories.material.members", result.Issues[0].Source)
	})

	t.Run("unresolved material reference", func(t *testing.T) {
		rec := fixtures.GoodContaminant()
		rec.Fields["affected_materials"] = content.Field{Value: content.ListValue(
			content.StringValue("titanium"), content.StringValue("vibranium"))}

		assert.Empty(t, v.Validate(rec, content.ModeResearch).Issues)

		result := v.Validate(rec, content.ModeAudit)
		require.Len(t, result.Issues, 1)
		assert.Contains(t, result.Issues[0].Message, "vibranium")
	})
}

func TestValidate_DefaultMode(t *testing.T) {
	v := newValidator(t)
	rec := fixtures.GoodMaterial()
	rec.Fields["category_class"] = content.Str("plastic")
	result := v.Validate(rec, "")
	assert.Len(t, result.Issues, 1, "bundled default mode is enhanced")
}

type stubAdapter struct{ called *bool }

func (stubAdapter) Category() content.Category { return content.CategoryMaterial }

func (s stubAdapter) Validate(c *Check) {
	*s.called = true
	c.Emit(requirements.RuleCategoryShape, "stub", "test", "stub adapter ran in %s mode", c.Mode())
}

func TestValidate_CustomAdapter(t *testing.T) {
	req, err := requirements.Default()
	require.NoError(t, err)
	called := false
	v := New(req, stubAdapter{called: &called})

	result := v.Validate(fixtures.GoodMaterial(), content.ModeEnhanced)
	assert.True(t, called)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "stub adapter ran in enhanced mode", result.Issues[0].Message)
}

func TestValidCAS(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"7732-18-5", true},
		{"1344-28-1", true},
		{"630-08-0", true},
		{"7732-18-4", false},
		{"7732185", false},
		{"1-18-5", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCAS(tt.in))
		})
	}
}
