package pipeline

import (
	"sort"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// VerificationPipeline verifies that every expected phase label is already
// present in the context's completed set. The check runs before this phase
// records its own completion, so listing verification_pipeline among the
// expectations only passes on a re-run.
type VerificationPipeline struct {
	Expected []Label
}

func (p VerificationPipeline) Label() Label { return LabelVerificationPipeline }

func (p VerificationPipeline) Run(ctx *ExecutionContext) PhaseResult {
	missing := make(map[Label]struct{})
	for _, l := range p.Expected {
		if !ctx.HasCompleted(l) {
			missing[l] = struct{}{}
		}
	}

	if len(missing) > 0 {
		return fail(p.Label(), violation.MissingConfiguredPhase(ctx.contractID, canonicalLabelOrder(missing)))
	}

	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}

// canonicalLabelOrder renders a label set in canonical pipeline order;
// labels outside the pipeline sort alphabetically after the known ones.
func canonicalLabelOrder(set map[Label]struct{}) []string {
	labels := make([]Label, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		oi, oj := ordinal(labels[i]), ordinal(labels[j])
		switch {
		case oi != 0 && oj != 0:
			return oi < oj
		case oi != 0:
			return true
		case oj != 0:
			return false
		default:
			return labels[i] < labels[j]
		}
	})

	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}
