// Package pipeline implements the twelve-phase invariant verification
// engine. Each phase is a pure check over its explicit inputs plus the
// context's accumulated history; it either passes or returns exactly one
// violation from the closed taxonomy in pkg/violation. Violations are
// terminal for the phase call and never downgraded; callers decide whether
// to halt (the intended fail-fast usage) or keep the context for inspection.
//
// The engine performs no I/O, takes no locks, and never reads wall-clock
// time. Distinct contexts share no state, so runs for different contract
// ids may proceed on separate goroutines without synchronization.
package pipeline

// PipelineSize is the fixed number of verification phases. Contract
// definitions declaring any other phase count are malformed.
const PipelineSize = 12

// Label identifies one verification phase.
type Label string

// The twelve phase labels in canonical execution order.
const (
	LabelContractDefinition   Label = "contract_definition"
	LabelThermalTesting       Label = "thermal_testing"
	LabelEffectsTracking      Label = "effects_tracking"
	LabelStateMachine         Label = "state_machine_validation"
	LabelReceiptGeneration    Label = "receipt_generation"
	LabelSwarmOrchestration   Label = "swarm_orchestration"
	LabelVerificationPipeline Label = "verification_pipeline"
	LabelContinuousLearning   Label = "continuous_learning"
	LabelDistributedConsensus Label = "distributed_consensus"
	LabelTimeTravelDebugging  Label = "time_travel_debugging"
	LabelPerformanceProphet   Label = "performance_prophet"
	LabelQualityDashboard     Label = "quality_dashboard"
)

// AllLabels returns the phase labels in canonical execution order.
func AllLabels() []Label {
	return []Label{
		LabelContractDefinition,
		LabelThermalTesting,
		LabelEffectsTracking,
		LabelStateMachine,
		LabelReceiptGeneration,
		LabelSwarmOrchestration,
		LabelVerificationPipeline,
		LabelContinuousLearning,
		LabelDistributedConsensus,
		LabelTimeTravelDebugging,
		LabelPerformanceProphet,
		LabelQualityDashboard,
	}
}

// RequiredLabels returns the subset of phases Finalize demands. Individual
// phase functions do not check predecessor completion; the finalizer is the
// only place this precondition is enforced.
func RequiredLabels() []Label {
	return []Label{
		LabelContractDefinition,
		LabelThermalTesting,
		LabelReceiptGeneration,
		LabelVerificationPipeline,
	}
}

// ordinal returns the 1-based canonical position of l, or 0 for labels
// outside the pipeline.
func ordinal(l Label) int {
	for i, known := range AllLabels() {
		if known == l {
			return i + 1
		}
	}
	return 0
}

// Phase is one verification phase bound to its inputs. Implementations are
// value types; Run must not panic and must return the single most specific
// violation that applies.
type Phase interface {
	Label() Label
	Run(ctx *ExecutionContext) PhaseResult
}
