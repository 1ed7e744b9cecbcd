package violation

// Kind identifies one invariant-violation variant.
// Codes are stable identifiers and MUST NOT change between releases;
// adding a failure mode means adding a new named kind, never reusing one.
type Kind string

const (
	// --- Contract ---
	KindMalformedContract   Kind = "MALFORMED_CONTRACT"
	KindDuplicateContractID Kind = "DUPLICATE_CONTRACT_ID"
	KindInvalidPhaseCount   Kind = "INVALID_PHASE_COUNT"

	// --- Thermal ---
	KindClockBackward        Kind = "CLOCK_BACKWARD"
	KindThermalBoundExceeded Kind = "THERMAL_BOUND_EXCEEDED"

	// --- Effects ---
	KindUnobservedEffect          Kind = "UNOBSERVED_EFFECT"
	KindLostEffect                Kind = "LOST_EFFECT"
	KindEffectCompositionMismatch Kind = "EFFECT_COMPOSITION_MISMATCH"

	// --- State machine ---
	KindInvalidInitialState    Kind = "INVALID_INITIAL_STATE"
	KindDeadState              Kind = "DEAD_STATE"
	KindUnhandledEvent         Kind = "UNHANDLED_EVENT"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"

	// --- Receipt ---
	KindMissingReceipt         Kind = "MISSING_RECEIPT"
	KindChecksumMismatch       Kind = "CHECKSUM_MISMATCH"
	KindReceiptVersionMismatch Kind = "RECEIPT_VERSION_MISMATCH"

	// --- Swarm ---
	KindIncompleteSwarmExecution Kind = "INCOMPLETE_SWARM_EXECUTION"

	// --- Pipeline ---
	KindMissingConfiguredPhase Kind = "MISSING_CONFIGURED_PHASE"

	// --- Learning ---
	KindLearnerStateInconsistency Kind = "LEARNER_STATE_INCONSISTENCY"

	// --- Consensus ---
	KindInsufficientQuorum Kind = "INSUFFICIENT_QUORUM"

	// --- Snapshot ---
	KindSnapshotVersionMismatch Kind = "SNAPSHOT_VERSION_MISMATCH"

	// --- Prophecy ---
	KindPredictionSelfCheckFailure Kind = "PREDICTION_SELF_CHECK_FAILURE"

	// --- Reporting ---
	KindDashboardInconsistency Kind = "DASHBOARD_INCONSISTENCY"
)

// AllKinds returns the full closed set of violation kinds in canonical order.
// Consumers that switch over Kind should test against this set so that a new
// kind cannot ship without every consumption site handling it.
func AllKinds() []Kind {
	return []Kind{
		KindMalformedContract,
		KindDuplicateContractID,
		KindInvalidPhaseCount,
		KindClockBackward,
		KindThermalBoundExceeded,
		KindUnobservedEffect,
		KindLostEffect,
		KindEffectCompositionMismatch,
		KindInvalidInitialState,
		KindDeadState,
		KindUnhandledEvent,
		KindInvalidStateTransition,
		KindMissingReceipt,
		KindChecksumMismatch,
		KindReceiptVersionMismatch,
		KindIncompleteSwarmExecution,
		KindMissingConfiguredPhase,
		KindLearnerStateInconsistency,
		KindInsufficientQuorum,
		KindSnapshotVersionMismatch,
		KindPredictionSelfCheckFailure,
		KindDashboardInconsistency,
	}
}
