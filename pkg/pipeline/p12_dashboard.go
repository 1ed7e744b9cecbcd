package pipeline

import "github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"

// QualityDashboard verifies the dashboard counters add up: every run must
// be accounted for as either passed or failed.
type QualityDashboard struct {
	Total  int
	Passed int
	Failed int
}

func (p QualityDashboard) Label() Label { return LabelQualityDashboard }

func (p QualityDashboard) Run(ctx *ExecutionContext) PhaseResult {
	if p.Passed+p.Failed != p.Total {
		return fail(p.Label(), violation.DashboardInconsistency(ctx.contractID, p.Total, p.Passed, p.Failed))
	}
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}
