package audit

import (
	"math"
	"sort"
	"strconv"

	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// Auditor runs the data-architecture checks. It holds no state and is safe
// for concurrent use.
type Auditor struct{}

// New creates an Auditor.
func New() *Auditor {
	return &Auditor{}
}

type pass struct {
	req    *requirements.Config
	record *content.Record
	rules  requirements.CategoryRules
	issues []content.Issue
}

func (p *pass) emit(rule string, cat content.IssueCategory, field, source, format string, args ...any) {
	p.issues = append(p.issues, content.NewIssue(p.req.Severity(rule), cat, field, source, format, args...))
}

func (p *pass) source(suffix string) string {
	return "categories." + string(p.record.Category) + "." + suffix
}

// Audit checks rec against req.
func (a *Auditor) Audit(rec *content.Record, req *requirements.Config) content.ValidationResult {
	p := &pass{req: req, record: rec}

	rules, ok := req.Category(rec.Category)
	if ok {
		p.rules = rules
		p.checkFields()
		p.checkIndex()
		p.checkDerivations()
	} else {
		p.emit(requirements.RuleUnknownCategory, content.IssueArchitecture, "category", "categories",
			"category %q has no rules", rec.Category)
	}
	p.checkCredentials()

	return content.ValidationResult{
		Phase:  content.PhaseAudit,
		Status: content.StatusFor(p.issues, req.Phases.Audit.FailAt),
		Issues: p.issues,
	}
}

func (p *pass) checkFields() {
	for _, name := range p.record.TextNames() {
		if p.rules.IsForbidden(name) {
			p.emit(requirements.RuleAuditForbidden, content.IssueArchitecture, name, p.source("forbidden_fields"),
				"upstream-only text field present on a final record")
		}
	}

	for _, name := range p.record.FieldNames() {
		f := p.record.Fields[name]
		if p.rules.IsForbidden(name) {
			p.emit(requirements.RuleAuditForbidden, content.IssueArchitecture, name, p.source("forbidden_fields"),
				"upstream-only field present on a final record")
			continue
		}

		switch f.Value.Kind {
		case content.KindNumber:
			p.checkRange(name, f)
		case content.KindObject:
			p.checkPairedRange(name, f)
		}
	}
}

func (p *pass) checkRange(name string, f content.Field) {
	r, ok := p.rules.Range(name)
	if !ok {
		return
	}
	v := f.Value.Number
	if math.IsNaN(v) || !r.Contains(v) {
		origin := f.Source
		if origin == "" {
			origin = "unsourced"
		}
		p.emit(requirements.RuleOutOfRange, content.IssueArchitecture, name, p.source("ranges."+name),
			"value %s%s outside [%s, %s] (data source: %s)", num(v), unitSuffix(f.Unit, r.Unit),
			num(r.Min), num(r.Max), origin)
	}
	if f.Source == "" {
		p.emit(requirements.RuleMissingSource, content.IssueArchitecture, name, p.source("ranges."+name),
			"missing optional provenance: ranged value has no data source")
	}
}

func (p *pass) checkPairedRange(name string, f content.Field) {
	lo, okLo := f.Value.Object["min"]
	hi, okHi := f.Value.Object["max"]
	if !okLo || !okHi || lo.Value.Kind != content.KindNumber || hi.Value.Kind != content.KindNumber {
		return
	}
	if lo.Value.Number > hi.Value.Number {
		p.emit(requirements.RuleInvertedRange, content.IssueArchitecture, name, requirements.SeveritySource(requirements.RuleInvertedRange),
			"min %s exceeds max %s", num(lo.Value.Number), num(hi.Value.Number))
	}
}

func (p *pass) checkIndex() {
	var foreign []content.Category
	for cat, rules := range p.req.Categories {
		if cat != p.record.Category && rules.IsMember(p.record.ID) {
			foreign = append(foreign, cat)
		}
	}
	sort.Slice(foreign, func(i, j int) bool { return foreign[i] < foreign[j] })
	for _, cat := range foreign {
		p.emit(requirements.RuleForeignIndex, content.IssueArchitecture, "category", "categories."+string(cat)+".members",
			"record claims category %s but is indexed under %s", p.record.Category, cat)
	}
	if len(foreign) == 0 && p.rules.HasIndex() && !p.rules.IsMember(p.record.ID) {
		p.emit(requirements.RuleUnindexed, content.IssueArchitecture, "id", p.source("members"),
			"record %q is not in the %s index", p.record.ID, p.record.Category)
	}
}

func (p *pass) checkDerivations() {
	tolerance := p.req.Technical.RelativeTolerance
	for _, d := range p.req.AutoFix.DerivationsFor(p.record.Category) {
		from, okFrom := p.record.NumberField(d.From)
		target, okTarget := p.record.NumberField(d.Target)
		if !okFrom || !okTarget {
			continue
		}
		expected := from * d.Factor
		if math.Abs(target-expected) <= tolerance*math.Abs(expected) {
			continue
		}
		issue := content.NewIssue(p.req.Severity(requirements.RuleDerivedMismatch), content.IssueArchitecture,
			d.Target, "autofix.derivations", "value %s is inconsistent with %s × %s = %s",
			num(target), d.From, num(d.Factor), num(expected))
		p.issues = append(p.issues, issue.WithFix(content.FixDeriveField))
	}
}

func (p *pass) checkCredentials() {
	detector := p.req.SecretDetector()
	if detector == nil || !detector.IsEnabled() {
		return
	}
	scan := func(field, text string) {
		for _, f := range detector.Check(text).Findings {
			p.emit(requirements.RuleCredentialLeak, content.IssueSecurity, field, "secrets.rules."+f.RuleID,
				"possible %s on line %d", f.Description, f.Line)
		}
	}
	for _, name := range p.record.TextNames() {
		scan(name, p.record.Text[name])
	}
	for _, name := range p.record.FieldNames() {
		if f := p.record.Fields[name]; f.Value.Kind == content.KindString {
			scan(name, f.Value.String)
		}
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func unitSuffix(fieldUnit, rangeUnit string) string {
	if fieldUnit != "" {
		return " " + fieldUnit
	}
	if rangeUnit != "" {
		return " " + rangeUnit
	}
	return ""
}
