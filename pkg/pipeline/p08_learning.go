package pipeline

import (
	"math"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// ContinuousLearning verifies a learner's reported state is grounded: the
// prediction must be a finite number and must rest on at least one sample.
type ContinuousLearning struct {
	Samples    int
	Prediction float64
}

func (p ContinuousLearning) Label() Label { return LabelContinuousLearning }

func (p ContinuousLearning) Run(ctx *ExecutionContext) PhaseResult {
	if math.IsNaN(p.Prediction) || math.IsInf(p.Prediction, 0) || p.Samples <= 0 {
		return fail(p.Label(), violation.LearnerStateInconsistency(ctx.contractID, p.Samples, p.Prediction))
	}
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}
