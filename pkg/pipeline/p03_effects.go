package pipeline

import (
	"golang.org/x/text/unicode/norm"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// EffectsTracking verifies the observed effect labels match the declared
// ones as sets, order-independent. Labels are NFC-normalized before
// comparison so visually identical labels from different producers compare
// equal.
type EffectsTracking struct {
	Declared []string
	Observed []string
}

func (p EffectsTracking) Label() Label { return LabelEffectsTracking }

func (p EffectsTracking) Run(ctx *ExecutionContext) PhaseResult {
	declared := labelSet(p.Declared)
	observed := labelSet(p.Observed)

	missing := diff(declared, observed)
	unexpected := diff(observed, declared)

	switch {
	case len(missing) > 0 && len(unexpected) > 0:
		return fail(p.Label(), violation.EffectCompositionMismatch(ctx.contractID, missing, unexpected))
	case len(missing) > 0:
		return fail(p.Label(), violation.UnobservedEffect(ctx.contractID, missing))
	case len(unexpected) > 0:
		return fail(p.Label(), violation.LostEffect(ctx.contractID, unexpected))
	}

	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}

func labelSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[norm.NFC.String(l)] = struct{}{}
	}
	return set
}

// diff returns the members of a absent from b. Order is not significant;
// violation constructors sort their label lists.
func diff(a, b map[string]struct{}) []string {
	var out []string
	for l := range a {
		if _, ok := b[l]; !ok {
			out = append(out, l)
		}
	}
	return out
}
