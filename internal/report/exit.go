package report

import (
	"github.com/fyrsmithlabs/contentgate/internal/content"
	"github.com/fyrsmithlabs/contentgate/internal/orchestrator"
)

// Process exit codes.
const (
	ExitPass     = 0
	ExitFail     = 1
	ExitCritical = 2
)

// ExitCode maps a grade onto a process exit code. A nil grade fails.
func ExitCode(g *content.QualityGrade) int {
	switch {
	case g == nil:
		return ExitFail
	case content.HasCritical(g.Issues()):
		return ExitCritical
	case g.Passed():
		return ExitPass
	default:
		return ExitFail
	}
}

// BatchExitCode returns the worst exit code across the batch. Ungraded
// records fail the batch.
func BatchExitCode(res *orchestrator.BatchResult) int {
	code := ExitPass
	for _, g := range res.Grades {
		if c := ExitCode(g); c > code {
			code = c
		}
	}
	return code
}
