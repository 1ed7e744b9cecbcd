package guard

import "time"

// DefaultRegistry returns a registry pre-loaded with the built-in operator
// catalog in canonical pattern order (1 → 12), one operator per verification
// family. This is the standard way to create a registry for CLI or CI usage;
// callers may register additional operators on top.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range builtinOperators() {
		// Built-in descriptors are statically valid.
		if err := r.Register(d); err != nil {
			panic("guard: invalid built-in operator: " + err.Error())
		}
	}
	return r
}

func builtinOperators() []OperatorDescriptor {
	pure := Properties{Deterministic: true, Idempotent: true, TypePreserving: true, Bounded: true}
	return []OperatorDescriptor{
		{
			ID:         "contract.verify_definition",
			Pattern:    1,
			Name:       "Contract Definition Check",
			Category:   CategoryContract,
			Properties: pure,
			MaxLatency: time.Millisecond,
			Guards:     []GuardType{Legality},
		},
		{
			ID:         "thermal.verify_monotonicity",
			Pattern:    2,
			Name:       "Thermal Monotonicity Check",
			Category:   CategoryThermal,
			Properties: pure,
			MaxLatency: time.Millisecond,
			Guards:     []GuardType{Chronology, Budget},
		},
		{
			ID:         "effects.verify_composition",
			Pattern:    3,
			Name:       "Effect Composition Check",
			Category:   CategoryEffects,
			Properties: pure,
			MaxLatency: 5 * time.Millisecond,
			Guards:     []GuardType{Causality},
		},
		{
			ID:         "state.verify_machine",
			Pattern:    4,
			Name:       "State Machine Check",
			Category:   CategoryState,
			Properties: pure,
			MaxLatency: 5 * time.Millisecond,
			Guards:     []GuardType{Legality},
		},
		{
			ID:      "receipt.generate",
			Pattern: 5,
			Name:    "Receipt Generation",
			// Generation mints a fresh receipt id and timestamp per call, so
			// it is neither deterministic nor idempotent.
			Category:   CategoryIntegrity,
			Properties: Properties{Bounded: true},
			MaxLatency: 2 * time.Millisecond,
			Guards:     []GuardType{Chronology},
		},
		{
			ID:         "swarm.verify_completion",
			Pattern:    6,
			Name:       "Swarm Completion Check",
			Category:   CategorySwarm,
			Properties: pure,
			MaxLatency: time.Millisecond,
			Guards:     []GuardType{Budget, Causality},
		},
		{
			ID:         "pipeline.verify_contracts",
			Pattern:    7,
			Name:       "Pipeline Contract Check",
			Category:   CategoryPipeline,
			Properties: pure,
			MaxLatency: 5 * time.Millisecond,
			Guards:     []GuardType{Causality},
		},
		{
			ID:         "learning.verify_updates",
			Pattern:    8,
			Name:       "Learning Update Check",
			Category:   CategoryLearning,
			Properties: pure,
			MaxLatency: 10 * time.Millisecond,
			Guards:     []GuardType{Recursion, Budget},
		},
		{
			ID:         "consensus.verify_quorum",
			Pattern:    9,
			Name:       "Quorum Check",
			Category:   CategoryConsensus,
			Properties: pure,
			MaxLatency: time.Millisecond,
			Guards:     []GuardType{Causality},
		},
		{
			ID:         "snapshot.verify_version",
			Pattern:    10,
			Name:       "Snapshot Version Check",
			Category:   CategorySnapshot,
			Properties: pure,
			MaxLatency: time.Millisecond,
			Guards:     []GuardType{Chronology},
		},
		{
			ID:         "prophecy.verify_self_check",
			Pattern:    11,
			Name:       "Prediction Self-Check",
			Category:   CategoryProphecy,
			Properties: pure,
			MaxLatency: 10 * time.Millisecond,
			Guards:     []GuardType{Recursion, Budget},
		},
		{
			ID:         "reporting.verify_dashboard",
			Pattern:    12,
			Name:       "Dashboard Consistency Check",
			Category:   CategoryReporting,
			Properties: pure,
			MaxLatency: 500 * time.Microsecond,
			Guards:     []GuardType{Legality},
		},
	}
}
