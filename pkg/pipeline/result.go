package pipeline

import "github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"

// PhaseResult is the two-variant outcome of one phase invocation: either
// the invariant held, or exactly one violation. There is no partial-success
// state.
type PhaseResult struct {
	Phase     Label                `json:"phase"`
	Violation *violation.Violation `json:"violation,omitempty"`
}

// OK reports whether the phase invariant held.
func (r PhaseResult) OK() bool {
	return r.Violation == nil
}

// Err returns the violation as an error, or nil when the phase passed.
func (r PhaseResult) Err() error {
	if r.Violation == nil {
		return nil
	}
	return r.Violation
}

func pass(l Label) PhaseResult {
	return PhaseResult{Phase: l}
}

func fail(l Label, v *violation.Violation) PhaseResult {
	v.Phase = string(l)
	return PhaseResult{Phase: l, Violation: v}
}
