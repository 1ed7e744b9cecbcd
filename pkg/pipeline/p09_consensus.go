package pipeline

import "github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"

// DistributedConsensus verifies the approval count meets the Byzantine
// two-thirds quorum: required = ceil(2·total/3), so for total=9 the quorum
// is 6 and approvals=6 passes the boundary.
type DistributedConsensus struct {
	Approvals int
	Total     int
}

func (p DistributedConsensus) Label() Label { return LabelDistributedConsensus }

// QuorumFor returns ceil(2·total/3) computed in integer arithmetic.
func QuorumFor(total int) int {
	return (2*total + 2) / 3
}

func (p DistributedConsensus) Run(ctx *ExecutionContext) PhaseResult {
	required := QuorumFor(p.Total)
	if p.Approvals < required {
		return fail(p.Label(), violation.InsufficientQuorum(ctx.contractID, p.Approvals, p.Total, required))
	}
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}
