package pipeline

import "github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"

// ThermalTesting verifies one observed timing sample τ against the declared
// bound and the context's monotonic history. Equal consecutive samples are
// permitted; history is non-decreasing, not strictly increasing. On success
// the sample is appended to the history.
type ThermalTesting struct {
	Tau   uint64
	Bound uint64
}

func (p ThermalTesting) Label() Label { return LabelThermalTesting }

func (p ThermalTesting) Run(ctx *ExecutionContext) PhaseResult {
	if p.Tau > p.Bound {
		return fail(p.Label(), violation.ThermalBoundExceeded(ctx.contractID, p.Tau, p.Bound))
	}
	if last, ok := ctx.lastThermal(); ok && p.Tau < last {
		return fail(p.Label(), violation.ClockBackward(ctx.contractID, last, p.Tau))
	}
	ctx.appendThermal(p.Tau)
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}
