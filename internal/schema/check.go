package schema

import (
	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/requirements"
)

// Check is the state of one validation pass. Adapters read the record and
// its rules from it and report problems through Emit.
type Check struct {
	req    *requirements.Config
	record *content.Record
	rules  requirements.CategoryRules
	mode   content.Mode
	issues []content.Issue
}

// Record returns the record under validation.
func (c *Check) Record() *content.Record { return c.record }

// Rules returns the rules of the record's category.
func (c *Check) Rules() requirements.CategoryRules { return c.rules }

// Requirements returns the requirements in force.
func (c *Check) Requirements() *requirements.Config { return c.req }

// Mode returns the strictness of this pass.
func (c *Check) Mode() content.Mode { return c.mode }

// Emit records an issue whose severity is configured for rule.
func (c *Check) Emit(rule, field, source, format string, args ...any) {
	c.add(content.NewIssue(c.req.Severity(rule), content.IssueSchema, field, source, format, args...))
}

func (c *Check) add(issue content.Issue) {
	c.issues = append(c.issues, issue)
}

func (c *Check) source(suffix string) string {
	return "categories." + string(c.record.Category) + "." + suffix
}
