package pipeline

import (
	"strings"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/receipt"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// ExecutionContext accumulates the history of one verification run: which
// phases have completed, the thermal samples observed so far, and the
// receipt retained by the receipt-generation phase.
//
// A context is owned by exactly one caller for the duration of its run and
// is not safe for concurrent use; it takes no locks. Distinct contexts are
// fully independent. A violation never corrupts the context: it stays
// usable for inspection (Completed, Finalize) afterwards.
type ExecutionContext struct {
	contractID     string
	completed      map[Label]struct{}
	thermalHistory []uint64
	receipt        *receipt.Receipt
}

// New creates a fresh context for contractID with an empty completed-phase
// set and empty thermal history. An empty contract id is a malformed
// contract.
func New(contractID string) (*ExecutionContext, *violation.Violation) {
	if contractID == "" {
		return nil, violation.MalformedContract("", "contract id must not be empty")
	}
	return &ExecutionContext{
		contractID: contractID,
		completed:  make(map[Label]struct{}),
	}, nil
}

// ContractID returns the immutable contract identifier set at construction.
func (c *ExecutionContext) ContractID() string {
	return c.contractID
}

// RecordPhaseCompletion inserts label into the completed-phase set.
// Idempotent; the set only ever grows within a run.
func (c *ExecutionContext) RecordPhaseCompletion(label Label) {
	c.completed[label] = struct{}{}
}

// HasCompleted reports whether label is in the completed-phase set.
func (c *ExecutionContext) HasCompleted(label Label) bool {
	_, ok := c.completed[label]
	return ok
}

// Completed returns the completed phase labels in canonical pipeline order.
func (c *ExecutionContext) Completed() []Label {
	out := make([]Label, 0, len(c.completed))
	for _, l := range AllLabels() {
		if c.HasCompleted(l) {
			out = append(out, l)
		}
	}
	return out
}

// ThermalHistory returns a copy of the observed timing samples, oldest
// first.
func (c *ExecutionContext) ThermalHistory() []uint64 {
	out := make([]uint64, len(c.thermalHistory))
	copy(out, c.thermalHistory)
	return out
}

func (c *ExecutionContext) lastThermal() (uint64, bool) {
	if len(c.thermalHistory) == 0 {
		return 0, false
	}
	return c.thermalHistory[len(c.thermalHistory)-1], true
}

func (c *ExecutionContext) appendThermal(tau uint64) {
	c.thermalHistory = append(c.thermalHistory, tau)
}

// Receipt returns the receipt retained by the receipt-generation phase,
// if one was generated in this run.
func (c *ExecutionContext) Receipt() (receipt.Receipt, bool) {
	if c.receipt == nil {
		return receipt.Receipt{}, false
	}
	return *c.receipt, true
}

// IncompleteFinalizationError reports the required phases missing when
// Finalize was called. It is a precondition failure of the caller's run
// sequence, not an invariant violation, so it carries no violation kind.
type IncompleteFinalizationError struct {
	Missing []Label
}

func (e *IncompleteFinalizationError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, l := range e.Missing {
		parts[i] = string(l)
	}
	return "finalization incomplete, missing phases: " + strings.Join(parts, ", ")
}

// Finalize succeeds iff every required phase label has been recorded as
// completed. On failure it names the missing phases in canonical order.
// This is the only place required phases are enforced.
func (c *ExecutionContext) Finalize() error {
	var missing []Label
	for _, l := range RequiredLabels() {
		if !c.HasCompleted(l) {
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		return &IncompleteFinalizationError{Missing: missing}
	}
	return nil
}
