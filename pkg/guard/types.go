package guard

import "time"

// GuardType is a closed enumeration of safety-constraint categories an
// operator can require. Guard types are attached to OperatorDescriptors,
// never standalone.
type GuardType string

const (
	// Legality prevents invalid state transitions.
	Legality GuardType = "LEGALITY"
	// Budget prevents exceeding a resource or time limit.
	Budget GuardType = "BUDGET"
	// Chronology enforces temporal ordering.
	Chronology GuardType = "CHRONOLOGY"
	// Causality ensures dependency ordering is respected.
	Causality GuardType = "CAUSALITY"
	// Recursion bounds recursion depth to a fixed constant.
	Recursion GuardType = "RECURSION"
)

// AllGuardTypes returns the closed guard-type set in canonical order.
func AllGuardTypes() []GuardType {
	return []GuardType{Legality, Budget, Chronology, Causality, Recursion}
}

func (g GuardType) valid() bool {
	switch g {
	case Legality, Budget, Chronology, Causality, Recursion:
		return true
	}
	return false
}

// Properties are the four correctness properties tracked per operator.
type Properties struct {
	Deterministic  bool `json:"deterministic" yaml:"deterministic"`
	Idempotent     bool `json:"idempotent" yaml:"idempotent"`
	TypePreserving bool `json:"type_preserving" yaml:"type_preserving"`
	Bounded        bool `json:"bounded" yaml:"bounded"`
}

// Category groups operators by the verification family they serve.
type Category string

const (
	CategoryContract  Category = "contract"
	CategoryThermal   Category = "thermal"
	CategoryEffects   Category = "effects"
	CategoryState     Category = "state"
	CategoryIntegrity Category = "integrity"
	CategorySwarm     Category = "swarm"
	CategoryPipeline  Category = "pipeline"
	CategoryLearning  Category = "learning"
	CategoryConsensus Category = "consensus"
	CategorySnapshot  Category = "snapshot"
	CategoryProphecy  Category = "prophecy"
	CategoryReporting Category = "reporting"
)

// OperatorDescriptor identifies one registered operator. Descriptors are
// created at registry initialization and treated as immutable afterwards;
// the registry hands out copies.
type OperatorDescriptor struct {
	// ID is the stable identifier operators are looked up by.
	ID string `json:"id" yaml:"id"`
	// Pattern is the ordinal pattern number, used for canonical ordering.
	Pattern int `json:"pattern" yaml:"pattern"`
	// Name is the human-readable operator name.
	Name       string     `json:"name" yaml:"name"`
	Category   Category   `json:"category" yaml:"category"`
	Properties Properties `json:"properties" yaml:"properties"`
	// MaxLatency is the operator's maximum-latency bound.
	MaxLatency time.Duration `json:"max_latency_ns" yaml:"max_latency_ns"`
	// Guards are the guard types this operator requires before invocation.
	Guards []GuardType `json:"guards" yaml:"guards"`
}

// RequiresGuard reports whether the descriptor lists g among its required
// guard types.
func (d OperatorDescriptor) RequiresGuard(g GuardType) bool {
	for _, have := range d.Guards {
		if have == g {
			return true
		}
	}
	return false
}

func (d OperatorDescriptor) clone() OperatorDescriptor {
	out := d
	out.Guards = make([]GuardType, len(d.Guards))
	copy(out.Guards, d.Guards)
	return out
}
