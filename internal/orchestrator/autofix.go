package orchestrator

import (
	"fmt"
	"strconv"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/schema"
)

// fix applies the corrections the phase result asks for. Only structured
// fields are ever changed, and only on the run's private copy of the record.
func (p *Pipeline) fix(r *run, phase content.Phase, result content.ValidationResult) []content.AppliedFix {
	switch phase {
	case content.PhaseSchema:
		if p.req.AutoFix.NormalizeEnumCase {
			return p.fixEnums(r, result.Issues)
		}
	case content.PhaseAudit:
		return p.fixDerivations(r, result.Issues)
	}
	return nil
}

func (p *Pipeline) fixEnums(r *run, issues []content.Issue) []content.AppliedFix {
	rules, ok := p.req.Category(r.record.Category)
	if !ok {
		return nil
	}
	var fixes []content.AppliedFix
	for _, i := range issues {
		if i.Fix != content.FixEnumCase {
			continue
		}
		f, ok := r.record.Fields[i.Field]
		if !ok || f.Value.Kind != content.KindString {
			continue
		}
		canonical, ok := schema.FoldEnum(rules.Enums[i.Field], f.Value.String)
		if !ok {
			continue
		}
		before := f.Value.String
		rec := r.mutable()
		f.Value = content.StringValue(canonical)
		rec.Fields[i.Field] = f
		fixes = append(fixes, content.AppliedFix{
			Kind:   content.FixEnumCase,
			Field:  i.Field,
			Phase:  content.PhaseSchema,
			Detail: fmt.Sprintf("%q -> %q", before, canonical),
		})
	}
	return fixes
}

func (p *Pipeline) fixDerivations(r *run, issues []content.Issue) []content.AppliedFix {
	pending := make(map[string]bool)
	for _, i := range issues {
		if i.Fix == content.FixDeriveField {
			pending[i.Field] = true
		}
	}
	if len(pending) == 0 {
		return nil
	}

	var fixes []content.AppliedFix
	for _, d := range p.req.AutoFix.DerivationsFor(r.record.Category) {
		if !pending[d.Target] {
			continue
		}
		from, ok := r.record.NumberField(d.From)
		if !ok {
			continue
		}
		before, _ := r.record.NumberField(d.Target)
		expected := from * d.Factor

		rec := r.mutable()
		f := rec.Fields[d.Target]
		f.Value = content.NumberValue(expected)
		rec.Fields[d.Target] = f
		fixes = append(fixes, content.AppliedFix{
			Kind:   content.FixDeriveField,
			Field:  d.Target,
			Phase:  content.PhaseAudit,
			Detail: fmt.Sprintf("%s -> %s (%s × %s)", formatNumber(before), formatNumber(expected), d.From, formatNumber(d.Factor)),
		})
		delete(pending, d.Target)
	}
	return fixes
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
