package pipeline

import (
	"math"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// PerformanceProphet verifies a performance prediction passes its own
// sanity check: confidence must lie in [0,1] and the predicted τ must be a
// finite, non-negative number.
type PerformanceProphet struct {
	PredictedTau float64
	Confidence   float64
}

func (p PerformanceProphet) Label() Label { return LabelPerformanceProphet }

func (p PerformanceProphet) Run(ctx *ExecutionContext) PhaseResult {
	confidenceOK := !math.IsNaN(p.Confidence) && p.Confidence >= 0 && p.Confidence <= 1
	tauOK := !math.IsNaN(p.PredictedTau) && !math.IsInf(p.PredictedTau, 0) && p.PredictedTau >= 0
	if !confidenceOK || !tauOK {
		return fail(p.Label(), violation.PredictionSelfCheckFailure(ctx.contractID, p.PredictedTau, p.Confidence))
	}
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}
