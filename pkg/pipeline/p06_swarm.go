package pipeline

import "github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"

// SwarmOrchestration verifies that every scheduled unit of work executed,
// and nothing more: executed < scheduled means work was silently dropped,
// executed > scheduled means phantom executions. Both directions are the
// same violation kind; the attached counts identify the direction.
type SwarmOrchestration struct {
	Scheduled int
	Executed  int
}

func (p SwarmOrchestration) Label() Label { return LabelSwarmOrchestration }

func (p SwarmOrchestration) Run(ctx *ExecutionContext) PhaseResult {
	if p.Executed != p.Scheduled {
		return fail(p.Label(), violation.IncompleteSwarmExecution(ctx.contractID, p.Scheduled, p.Executed))
	}
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}
