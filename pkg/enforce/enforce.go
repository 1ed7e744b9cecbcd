// Package enforce runs the runtime checks behind the guard types operator
// descriptors declare. A Checker is bound to a guard registry; for each
// invocation it evaluates every guard the operator requires and returns a
// Decision. All checks fail closed: an unregistered operator, a missing
// limiter, or an unconfigured transition table denies rather than allows.
package enforce

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/guard"
)

// DefaultMaxRecursionDepth bounds operator self-invocation when the
// checker is not configured with an explicit limit.
const DefaultMaxRecursionDepth = 32

// Decision is the outcome of a guard evaluation. Guard names the guard
// that denied; it is empty when the invocation is allowed or when the
// denial precedes guard dispatch.
type Decision struct {
	Allowed bool            `json:"allowed"`
	Guard   guard.GuardType `json:"guard,omitempty"`
	Reason  string          `json:"reason"`
}

// Invocation describes one operator call about to happen, with the
// evidence each guard type inspects.
type Invocation struct {
	OperatorID string

	// ActorID keys the rate-limit bucket for BUDGET checks.
	ActorID string

	// Tick is the logical invocation counter for CHRONOLOGY checks.
	Tick uint64

	// From and Event describe the transition under test for LEGALITY.
	From  string
	Event string

	// Dependencies and Completed feed the CAUSALITY subset check.
	Dependencies []string
	Completed    []string

	// Depth is the current self-invocation depth for RECURSION.
	Depth int
}

// Config carries the checker's collaborators and limits.
type Config struct {
	// Limiter backs BUDGET checks. Nil denies every BUDGET-guarded call.
	Limiter LimiterStore

	// Policy is the token-bucket policy applied per actor.
	Policy RatePolicy

	// Transitions is the legal transition table for LEGALITY checks.
	Transitions map[string]map[string]string

	// MaxDepth overrides DefaultMaxRecursionDepth when positive.
	MaxDepth int
}

// Checker evaluates guard requirements against live invocations.
type Checker struct {
	registry    *guard.Registry
	limiter     LimiterStore
	policy      RatePolicy
	transitions map[string]map[string]string
	maxDepth    int

	mu    sync.Mutex
	ticks map[string]uint64
}

// NewChecker builds a checker over reg.
func NewChecker(reg *guard.Registry, cfg Config) *Checker {
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRecursionDepth
	}
	return &Checker{
		registry:    reg,
		limiter:     cfg.Limiter,
		policy:      cfg.Policy,
		transitions: cfg.Transitions,
		maxDepth:    maxDepth,
		ticks:       make(map[string]uint64),
	}
}

// Check runs every guard the invoked operator requires, in the order the
// descriptor declares them, stopping at the first denial.
func (c *Checker) Check(ctx context.Context, inv Invocation) Decision {
	desc, ok := c.registry.Lookup(inv.OperatorID)
	if !ok {
		return deny("", fmt.Sprintf("operator %q not registered", inv.OperatorID))
	}

	for _, g := range desc.Guards {
		var d Decision
		switch g {
		case guard.Legality:
			d = c.checkLegality(inv)
		case guard.Budget:
			d = c.checkBudget(ctx, inv)
		case guard.Chronology:
			d = c.checkChronology(inv)
		case guard.Causality:
			d = c.checkCausality(inv)
		case guard.Recursion:
			d = c.checkRecursion(inv)
		default:
			d = deny(g, fmt.Sprintf("guard type %q has no check", g))
		}
		if !d.Allowed {
			return d
		}
	}
	return allow()
}

// ObserveLatency judges a completed call against the operator's latency
// budget. A zero budget means unbounded.
func (c *Checker) ObserveLatency(operatorID string, elapsed time.Duration) Decision {
	desc, ok := c.registry.Lookup(operatorID)
	if !ok {
		return deny("", fmt.Sprintf("operator %q not registered", operatorID))
	}
	if desc.MaxLatency > 0 && elapsed > desc.MaxLatency {
		return deny("", fmt.Sprintf("operator %s took %s, budget is %s", operatorID, elapsed, desc.MaxLatency))
	}
	return allow()
}

func (c *Checker) checkLegality(inv Invocation) Decision {
	if c.transitions == nil {
		return deny(guard.Legality, "no transition table configured")
	}
	row, ok := c.transitions[inv.From]
	if !ok {
		return deny(guard.Legality, fmt.Sprintf("no transitions defined from state %q", inv.From))
	}
	if _, ok := row[inv.Event]; !ok {
		return deny(guard.Legality, fmt.Sprintf("event %q not legal in state %q", inv.Event, inv.From))
	}
	return allow()
}

func (c *Checker) checkBudget(ctx context.Context, inv Invocation) Decision {
	if c.limiter == nil {
		return deny(guard.Budget, "no limiter store configured")
	}
	allowed, err := c.limiter.Allow(ctx, inv.ActorID, c.policy, 1)
	if err != nil {
		return deny(guard.Budget, fmt.Sprintf("limiter check failed: %v", err))
	}
	if !allowed {
		return deny(guard.Budget, fmt.Sprintf("rate limit exceeded for actor %q", inv.ActorID))
	}
	return allow()
}

func (c *Checker) checkChronology(inv Invocation) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, seen := c.ticks[inv.ActorID]
	if seen && inv.Tick < last {
		return deny(guard.Chronology, fmt.Sprintf("tick %d behind last observed %d for actor %q", inv.Tick, last, inv.ActorID))
	}
	c.ticks[inv.ActorID] = inv.Tick
	return allow()
}

func (c *Checker) checkCausality(inv Invocation) Decision {
	completed := make(map[string]struct{}, len(inv.Completed))
	for _, dep := range inv.Completed {
		completed[dep] = struct{}{}
	}
	var missing []string
	for _, dep := range inv.Dependencies {
		if _, ok := completed[dep]; !ok {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return deny(guard.Causality, fmt.Sprintf("dependencies not yet completed: %v", missing))
	}
	return allow()
}

func (c *Checker) checkRecursion(inv Invocation) Decision {
	if inv.Depth < 0 {
		return deny(guard.Recursion, fmt.Sprintf("negative recursion depth %d", inv.Depth))
	}
	if inv.Depth > c.maxDepth {
		return deny(guard.Recursion, fmt.Sprintf("recursion depth %d exceeds limit %d", inv.Depth, c.maxDepth))
	}
	return allow()
}

func allow() Decision {
	return Decision{Allowed: true, Reason: "ok"}
}

func deny(g guard.GuardType, reason string) Decision {
	return Decision{Allowed: false, Guard: g, Reason: reason}
}
