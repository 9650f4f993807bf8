package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/contentgate/internal/content"
)

// State is a step of the validation lifecycle.
type State string

const (
	// StatePending is entered before any phase runs.
	StatePending State = "pending"

	// StateSchemaCheck runs the schema validator.
	StateSchemaCheck State = "schema_check"

	// StateDataAudit runs the record auditor.
	StateDataAudit State = "data_audit"

	// StateQualityScoring runs every scorer over every text field.
	StateQualityScoring State = "quality_scoring"

	// StateAggregated is terminal. The grade has been computed.
	StateAggregated State = "aggregated"
)

// AllStates returns the lifecycle states in order.
func AllStates() []State {
	return []State{StatePending, StateSchemaCheck, StateDataAudit, StateQualityScoring, StateAggregated}
}

// stateFor maps a phase to the state that runs it.
func stateFor(p content.Phase) State {
	switch p {
	case content.PhaseSchema:
		return StateSchemaCheck
	case content.PhaseAudit:
		return StateDataAudit
	case content.PhaseQuality:
		return StateQualityScoring
	}
	return StatePending
}

// percentage is the share of the lifecycle completed on entering s.
func (s State) percentage() int {
	states := AllStates()
	for i, st := range states {
		if st == s {
			return i * 100 / (len(states) - 1)
		}
	}
	return 0
}

// PhaseProgress reports a state transition during a lifecycle run.
type PhaseProgress struct {
	RecordID   string        `json:"record_id"`
	State      State         `json:"state"`
	Phase      content.Phase `json:"phase,omitempty"`
	Message    string        `json:"message"`
	Percentage int           `json:"percentage"`
}

// ProgressCallback receives state transitions. When used with ValidateBatch
// it is called from several goroutines.
type ProgressCallback func(progress PhaseProgress)

// LifecycleOptions tune one lifecycle run.
type LifecycleOptions struct {
	// AutoFix applies the declared corrections to a copy of the record and
	// re-runs the affected phase.
	AutoFix bool `json:"auto_fix"`

	// Mode is the schema strictness. Empty selects the requirements default.
	Mode content.Mode `json:"mode,omitempty"`
}

// ParsePhases converts phase names into phases in execution order. An empty
// list selects every phase.
func ParsePhases(names []string) ([]content.Phase, error) {
	if len(names) == 0 {
		return content.AllPhases(), nil
	}
	requested := make(map[content.Phase]bool, len(names))
	for _, n := range names {
		p := content.Phase(strings.ToLower(strings.TrimSpace(n)))
		if !knownPhase(p) {
			return nil, fmt.Errorf("unknown phase %q", n)
		}
		requested[p] = true
	}
	var phases []content.Phase
	for _, p := range content.AllPhases() {
		if requested[p] {
			phases = append(phases, p)
		}
	}
	return phases, nil
}

func knownPhase(p content.Phase) bool {
	for _, known := range content.AllPhases() {
		if p == known {
			return true
		}
	}
	return false
}

// Clock returns the current time. Pipelines measure phase durations with it.
type Clock func() time.Time

// FrozenClock returns a clock that always reports t.
func FrozenClock(t time.Time) Clock {
	return func() time.Time { return t }
}
