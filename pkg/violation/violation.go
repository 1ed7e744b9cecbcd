// Package violation defines the closed taxonomy of unrecoverable invariant
// violations detected by the verification pipeline.
//
// Every failure path in the engine maps to exactly one named Kind; there is
// no catch-all variant. Each Violation carries the concrete expected/actual
// evidence so a caller can render an actionable diagnostic without
// re-deriving context. Violations are terminal by design: the engine never
// retries, downgrades, or absorbs one.
package violation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Violation is a concrete, named failure of one phase invariant.
// It implements error so callers can thread it through ordinary error paths,
// and is JSON-serializable for audit trails.
type Violation struct {
	Kind       Kind   `json:"kind"`
	Phase      string `json:"phase,omitempty"`
	ContractID string `json:"contract_id,omitempty"`
	Expected   any    `json:"expected,omitempty"`
	Actual     any    `json:"actual,omitempty"`
	Detail     string `json:"detail"`
}

// Error renders the violation as a single diagnostic line.
func (v *Violation) Error() string {
	var b strings.Builder
	b.WriteString(string(v.Kind))
	if v.Phase != "" {
		b.WriteString(" [")
		b.WriteString(v.Phase)
		b.WriteString("]")
	}
	if v.ContractID != "" {
		b.WriteString(" contract=")
		b.WriteString(v.ContractID)
	}
	if v.Detail != "" {
		b.WriteString(": ")
		b.WriteString(v.Detail)
	}
	return b.String()
}

// --- Contract ---

// MalformedContract reports a structurally invalid contract declaration,
// e.g. an empty contract identifier.
func MalformedContract(contractID, detail string) *Violation {
	return &Violation{
		Kind:       KindMalformedContract,
		ContractID: contractID,
		Detail:     detail,
	}
}

// MalformedPhaseCount reports a contract declaring the wrong number of
// pipeline phases. want is the fixed pipeline size.
func MalformedPhaseCount(contractID string, declared, want int) *Violation {
	return &Violation{
		Kind:       KindMalformedContract,
		ContractID: contractID,
		Expected:   want,
		Actual:     declared,
		Detail:     fmt.Sprintf("declared phase count %d, want %d", declared, want),
	}
}

// DuplicateContractID reports a contract definition re-run on a context whose
// contract id already completed that phase once.
func DuplicateContractID(contractID string) *Violation {
	return &Violation{
		Kind:       KindDuplicateContractID,
		ContractID: contractID,
		Actual:     contractID,
		Detail:     fmt.Sprintf("contract %q already defined in this context", contractID),
	}
}

// InvalidPhaseCount reports a pipeline declaration whose length differs from
// the fixed pipeline size. Emitted by the manifest path, not by phase one.
func InvalidPhaseCount(contractID string, declared, want int) *Violation {
	return &Violation{
		Kind:       KindInvalidPhaseCount,
		ContractID: contractID,
		Expected:   want,
		Actual:     declared,
		Detail:     fmt.Sprintf("pipeline declares %d phases, want %d", declared, want),
	}
}

// --- Thermal ---

// ClockBackward reports a timing sample below the last recorded one.
// Monotonicity requires τ to be non-decreasing; equal values are permitted.
func ClockBackward(contractID string, last, tau uint64) *Violation {
	return &Violation{
		Kind:       KindClockBackward,
		ContractID: contractID,
		Expected:   last,
		Actual:     tau,
		Detail:     fmt.Sprintf("τ=%d regressed below last recorded τ=%d", tau, last),
	}
}

// ThermalBoundExceeded reports a timing sample above the declared bound.
func ThermalBoundExceeded(contractID string, tau, bound uint64) *Violation {
	return &Violation{
		Kind:       KindThermalBoundExceeded,
		ContractID: contractID,
		Expected:   bound,
		Actual:     tau,
		Detail:     fmt.Sprintf("τ=%d exceeds bound %d", tau, bound),
	}
}

// --- Effects ---

// UnobservedEffect reports declared effects that were never observed.
// The offending labels are carried sorted for deterministic output.
func UnobservedEffect(contractID string, missing []string) *Violation {
	missing = sortedCopy(missing)
	return &Violation{
		Kind:       KindUnobservedEffect,
		ContractID: contractID,
		Expected:   missing,
		Detail:     fmt.Sprintf("declared effects never observed: %s", strings.Join(missing, ", ")),
	}
}

// LostEffect reports observed effects that were never declared.
func LostEffect(contractID string, unexpected []string) *Violation {
	unexpected = sortedCopy(unexpected)
	return &Violation{
		Kind:       KindLostEffect,
		ContractID: contractID,
		Actual:     unexpected,
		Detail:     fmt.Sprintf("observed effects never declared: %s", strings.Join(unexpected, ", ")),
	}
}

// EffectCompositionMismatch reports an effect set broken in both directions
// at once: declared effects missing and undeclared effects present.
func EffectCompositionMismatch(contractID string, missing, unexpected []string) *Violation {
	missing = sortedCopy(missing)
	unexpected = sortedCopy(unexpected)
	return &Violation{
		Kind:       KindEffectCompositionMismatch,
		ContractID: contractID,
		Expected:   missing,
		Actual:     unexpected,
		Detail: fmt.Sprintf("effect composition broken: missing %s; unexpected %s",
			strings.Join(missing, ", "), strings.Join(unexpected, ", ")),
	}
}

// --- State machine ---

// InvalidInitialState reports an initial state outside the valid state set.
func InvalidInitialState(contractID, initial string, valid []string) *Violation {
	valid = sortedCopy(valid)
	return &Violation{
		Kind:       KindInvalidInitialState,
		ContractID: contractID,
		Expected:   valid,
		Actual:     initial,
		Detail:     fmt.Sprintf("initial state %q not in valid set {%s}", initial, strings.Join(valid, ", ")),
	}
}

// DeadState reports a state with no reachable outgoing transition.
func DeadState(contractID, state string) *Violation {
	return &Violation{
		Kind:       KindDeadState,
		ContractID: contractID,
		Actual:     state,
		Detail:     fmt.Sprintf("state %q has no outgoing transitions", state),
	}
}

// UnhandledEvent reports declared events with no transition-table entry.
func UnhandledEvent(contractID string, events []string) *Violation {
	events = sortedCopy(events)
	return &Violation{
		Kind:       KindUnhandledEvent,
		ContractID: contractID,
		Actual:     events,
		Detail:     fmt.Sprintf("no transition handles events: %s", strings.Join(events, ", ")),
	}
}

// InvalidStateTransition reports a transition targeting a state outside the
// valid set.
func InvalidStateTransition(contractID, from, event, to string) *Violation {
	return &Violation{
		Kind:       KindInvalidStateTransition,
		ContractID: contractID,
		Actual:     to,
		Detail:     fmt.Sprintf("transition %q --%s--> %q targets an unknown state", from, event, to),
	}
}

// --- Receipt ---

// MissingReceipt reports receipt verification against a context that never
// generated one.
func MissingReceipt(contractID string) *Violation {
	return &Violation{
		Kind:       KindMissingReceipt,
		ContractID: contractID,
		Detail:     "no receipt generated for this verification run",
	}
}

// ChecksumMismatch reports a receipt whose declared checksum differs from the
// independently computed one. Checksums are rendered in hex to preserve full
// 64-bit precision in JSON.
func ChecksumMismatch(contractID string, declared, computed uint64) *Violation {
	return &Violation{
		Kind:       KindChecksumMismatch,
		ContractID: contractID,
		Expected:   hexChecksum(declared),
		Actual:     hexChecksum(computed),
		Detail:     fmt.Sprintf("declared checksum %s, computed %s", hexChecksum(declared), hexChecksum(computed)),
	}
}

// ReceiptVersionMismatch reports a receipt version below a prior receipt in
// the same context.
func ReceiptVersionMismatch(contractID string, version, previous uint64) *Violation {
	return &Violation{
		Kind:       KindReceiptVersionMismatch,
		ContractID: contractID,
		Expected:   previous,
		Actual:     version,
		Detail:     fmt.Sprintf("receipt version %d below prior version %d", version, previous),
	}
}

// --- Swarm ---

// IncompleteSwarmExecution reports executed work units diverging from the
// scheduled count, in either direction: dropped work when executed falls
// short, phantom executions when it overshoots.
func IncompleteSwarmExecution(contractID string, scheduled, executed int) *Violation {
	detail := fmt.Sprintf("executed %d of %d scheduled units", executed, scheduled)
	if executed > scheduled {
		detail = fmt.Sprintf("executed %d units but only %d scheduled (phantom executions)", executed, scheduled)
	}
	return &Violation{
		Kind:       KindIncompleteSwarmExecution,
		ContractID: contractID,
		Expected:   scheduled,
		Actual:     executed,
		Detail:     detail,
	}
}

// --- Pipeline ---

// MissingConfiguredPhase reports expected phases absent from the completed
// set, all of them, in canonical pipeline order.
func MissingConfiguredPhase(contractID string, missing []string) *Violation {
	return &Violation{
		Kind:       KindMissingConfiguredPhase,
		ContractID: contractID,
		Expected:   missing,
		Detail:     fmt.Sprintf("configured phases never completed: %s", strings.Join(missing, ", ")),
	}
}

// --- Learning ---

// LearnerStateInconsistency reports an ungrounded or non-finite prediction.
// The prediction is formatted as a string so NaN and infinities survive JSON
// serialization.
func LearnerStateInconsistency(contractID string, samples int, prediction float64) *Violation {
	return &Violation{
		Kind:       KindLearnerStateInconsistency,
		ContractID: contractID,
		Actual:     formatFloat(prediction),
		Detail:     fmt.Sprintf("prediction %s from %d samples is not grounded", formatFloat(prediction), samples),
	}
}

// --- Consensus ---

// InsufficientQuorum reports approvals below the Byzantine two-thirds quorum.
// required is ceil(2·total/3).
func InsufficientQuorum(contractID string, approvals, total, required int) *Violation {
	return &Violation{
		Kind:       KindInsufficientQuorum,
		ContractID: contractID,
		Expected:   required,
		Actual:     approvals,
		Detail:     fmt.Sprintf("%d of %d approvals, quorum requires %d", approvals, total, required),
	}
}

// --- Snapshot ---

// SnapshotVersionMismatch reports a snapshot version diverging from the
// expected one.
func SnapshotVersionMismatch(contractID string, snapshot, expected uint64) *Violation {
	return &Violation{
		Kind:       KindSnapshotVersionMismatch,
		ContractID: contractID,
		Expected:   expected,
		Actual:     snapshot,
		Detail:     fmt.Sprintf("snapshot version %d, expected %d", snapshot, expected),
	}
}

// --- Prophecy ---

// PredictionSelfCheckFailure reports a performance prediction failing its own
// sanity bounds: confidence outside [0,1] or a negative/non-finite τ.
func PredictionSelfCheckFailure(contractID string, predicted, confidence float64) *Violation {
	return &Violation{
		Kind:       KindPredictionSelfCheckFailure,
		ContractID: contractID,
		Actual:     formatFloat(predicted),
		Detail: fmt.Sprintf("predicted τ=%s with confidence %s failed self-check",
			formatFloat(predicted), formatFloat(confidence)),
	}
}

// --- Reporting ---

// DashboardInconsistency reports dashboard counters that do not add up.
func DashboardInconsistency(contractID string, total, passed, failed int) *Violation {
	return &Violation{
		Kind:       KindDashboardInconsistency,
		ContractID: contractID,
		Expected:   total,
		Actual:     passed + failed,
		Detail:     fmt.Sprintf("passed %d + failed %d = %d, want total %d", passed, failed, passed+failed, total),
	}
}

// --- helpers ---

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func hexChecksum(sum uint64) string {
	return fmt.Sprintf("0x%x", sum)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
