package pipeline

import "github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"

// ContractDefinition verifies the declared phase count against the fixed
// pipeline size, and guards against re-defining a contract that already
// completed this phase in the same context.
type ContractDefinition struct {
	DeclaredPhaseCount int
}

func (p ContractDefinition) Label() Label { return LabelContractDefinition }

func (p ContractDefinition) Run(ctx *ExecutionContext) PhaseResult {
	if p.DeclaredPhaseCount != PipelineSize {
		return fail(p.Label(), violation.MalformedPhaseCount(ctx.contractID, p.DeclaredPhaseCount, PipelineSize))
	}
	if ctx.HasCompleted(p.Label()) {
		return fail(p.Label(), violation.DuplicateContractID(ctx.contractID))
	}
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}
