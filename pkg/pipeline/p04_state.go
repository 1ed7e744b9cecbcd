package pipeline

import (
	"sort"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// StateMachineValidation verifies a declared state machine: the initial
// state must be a member of the valid set and have at least one outgoing
// transition, every declared event must be handled somewhere in the
// transition table, and every transition target must be a valid state.
type StateMachineValidation struct {
	Initial     string
	ValidStates []string
	// Transitions maps state → event → next state.
	Transitions map[string]map[string]string
	// Events are the declared events the machine must handle.
	Events []string
}

func (p StateMachineValidation) Label() Label { return LabelStateMachine }

func (p StateMachineValidation) Run(ctx *ExecutionContext) PhaseResult {
	valid := make(map[string]struct{}, len(p.ValidStates))
	for _, s := range p.ValidStates {
		valid[s] = struct{}{}
	}

	if _, ok := valid[p.Initial]; !ok {
		return fail(p.Label(), violation.InvalidInitialState(ctx.contractID, p.Initial, p.ValidStates))
	}
	if len(p.Transitions[p.Initial]) == 0 {
		return fail(p.Label(), violation.DeadState(ctx.contractID, p.Initial))
	}

	if unhandled := p.unhandledEvents(); len(unhandled) > 0 {
		return fail(p.Label(), violation.UnhandledEvent(ctx.contractID, unhandled))
	}

	if from, event, to, ok := p.invalidTransition(valid); !ok {
		return fail(p.Label(), violation.InvalidStateTransition(ctx.contractID, from, event, to))
	}

	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}

// unhandledEvents returns the declared events no transition-table row
// handles.
func (p StateMachineValidation) unhandledEvents() []string {
	handled := make(map[string]struct{})
	for _, row := range p.Transitions {
		for event := range row {
			handled[event] = struct{}{}
		}
	}

	var out []string
	for _, e := range p.Events {
		if _, ok := handled[e]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// invalidTransition scans the table in deterministic order and reports the
// first transition targeting a state outside the valid set. ok is true when
// every target is valid.
func (p StateMachineValidation) invalidTransition(valid map[string]struct{}) (from, event, to string, ok bool) {
	states := make([]string, 0, len(p.Transitions))
	for s := range p.Transitions {
		states = append(states, s)
	}
	sort.Strings(states)

	for _, s := range states {
		row := p.Transitions[s]
		events := make([]string, 0, len(row))
		for e := range row {
			events = append(events, e)
		}
		sort.Strings(events)

		for _, e := range events {
			target := row[e]
			if _, known := valid[target]; !known {
				return s, e, target, false
			}
		}
	}
	return "", "", "", true
}
