package pipeline

import "github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"

// TimeTravelDebugging verifies a restored snapshot is the one the caller
// expected to restore.
type TimeTravelDebugging struct {
	SnapshotVersion uint64
	ExpectedVersion uint64
}

func (p TimeTravelDebugging) Label() Label { return LabelTimeTravelDebugging }

func (p TimeTravelDebugging) Run(ctx *ExecutionContext) PhaseResult {
	if p.SnapshotVersion != p.ExpectedVersion {
		return fail(p.Label(), violation.SnapshotVersionMismatch(ctx.contractID, p.SnapshotVersion, p.ExpectedVersion))
	}
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}
