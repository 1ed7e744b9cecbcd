package violation

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllKinds_ClosedSet pins the taxonomy: 22 kinds, no duplicates, stable
// codes. Invariant: the set is closed — a new failure mode must add a named
// kind here and a producer in the pipeline, never a catch-all.
func TestAllKinds_ClosedSet(t *testing.T) {
	kinds := AllKinds()
	require.Len(t, kinds, 22)

	seen := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		assert.False(t, seen[k], "duplicate kind %s", k)
		seen[k] = true
		assert.NotEmpty(t, string(k))
	}

	// Spot-check codes that external audit consumers key on.
	assert.Contains(t, kinds, KindClockBackward)
	assert.Contains(t, kinds, KindChecksumMismatch)
	assert.Contains(t, kinds, KindInsufficientQuorum)
	assert.Contains(t, kinds, KindDashboardInconsistency)
}

func TestViolation_Error(t *testing.T) {
	v := ThermalBoundExceeded("contract-001", 1500, 1000)
	v.Phase = "thermal_testing"

	msg := v.Error()
	assert.Contains(t, msg, "THERMAL_BOUND_EXCEEDED")
	assert.Contains(t, msg, "thermal_testing")
	assert.Contains(t, msg, "contract-001")
	assert.Contains(t, msg, "τ=1500 exceeds bound 1000")
}

// TestConstructors_Evidence verifies each constructor attaches the concrete
// expected/actual values a caller needs to render a diagnostic.
func TestConstructors_Evidence(t *testing.T) {
	t.Run("checksum mismatch carries both values in hex", func(t *testing.T) {
		v := ChecksumMismatch("c1", 0x1234, 0x9999)
		assert.Equal(t, KindChecksumMismatch, v.Kind)
		assert.Equal(t, "0x1234", v.Expected)
		assert.Equal(t, "0x9999", v.Actual)
	})

	t.Run("quorum carries required and approvals", func(t *testing.T) {
		v := InsufficientQuorum("c1", 5, 9, 6)
		assert.Equal(t, 6, v.Expected)
		assert.Equal(t, 5, v.Actual)
		assert.Contains(t, v.Detail, "5 of 9")
	})

	t.Run("dashboard carries all three counts", func(t *testing.T) {
		v := DashboardInconsistency("c1", 100, 95, 3)
		assert.Equal(t, 100, v.Expected)
		assert.Equal(t, 98, v.Actual)
		assert.Contains(t, v.Detail, "passed 95 + failed 3 = 98, want total 100")
	})

	t.Run("phantom swarm execution named as such", func(t *testing.T) {
		v := IncompleteSwarmExecution("c1", 4, 7)
		assert.Equal(t, 4, v.Expected)
		assert.Equal(t, 7, v.Actual)
		assert.Contains(t, v.Detail, "phantom")
	})

	t.Run("clock backward carries last and regressed tau", func(t *testing.T) {
		v := ClockBackward("c1", 8, 3)
		assert.Equal(t, uint64(8), v.Expected)
		assert.Equal(t, uint64(3), v.Actual)
	})
}

// TestEffectLists_Deterministic verifies offending labels are sorted so the
// same inputs always render the same diagnostic regardless of input order.
func TestEffectLists_Deterministic(t *testing.T) {
	a := UnobservedEffect("c1", []string{"write_db", "send_mail", "emit_event"})
	b := UnobservedEffect("c1", []string{"emit_event", "write_db", "send_mail"})
	assert.Equal(t, a.Detail, b.Detail)
	assert.Equal(t, a.Expected, b.Expected)
}

// TestNonFinitePrediction_Serializable verifies violations carrying NaN or
// infinite floats still serialize for audit trails; encoding/json rejects
// raw non-finite float64 values.
func TestNonFinitePrediction_Serializable(t *testing.T) {
	v := LearnerStateInconsistency("c1", 10, math.NaN())
	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), "NaN")

	v = PredictionSelfCheckFailure("c1", math.Inf(-1), 0.5)
	data, err = json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), "-Inf")
}
