package runner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/evidence"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/manifest"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/pipeline"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/store"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("run-%03d", n)
	}
}

func twelveLabels() []string {
	all := pipeline.AllLabels()
	out := make([]string, len(all))
	for i, l := range all {
		out[i] = string(l)
	}
	return out
}

func testRunner() (*Runner, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	r := New().
		WithStore(mem).
		WithClock(fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}).
		WithIDSource(sequentialIDs())
	return r, mem
}

func TestRunPassEndToEnd(t *testing.T) {
	r, mem := testRunner()

	m := &manifest.RunManifest{
		ContractID: "contract-001",
		Pipeline:   twelveLabels(),
		Phases: manifest.PhaseInputs{
			Contract: &manifest.ContractInput{DeclaredPhaseCount: 12},
			Thermal:  &manifest.ThermalInput{Bound: 8, Samples: []uint64{5, 5, 7}},
			Receipt:  &manifest.ReceiptInput{Version: 1, Declared: 0x1234, Computed: 0x1234},
			Verification: &manifest.VerificationInput{Expected: []string{
				"contract_definition", "thermal_testing", "receipt_generation",
			}},
		},
	}

	rep, err := r.Run(context.Background(), m)
	require.NoError(t, err)
	assert.True(t, rep.Pass())
	assert.Equal(t, store.VerdictPass, rep.Verdict)
	assert.Nil(t, rep.Violation)
	assert.Empty(t, rep.Incomplete)

	// contract + three thermal samples + receipt + verification.
	require.Len(t, rep.Phases, 6)
	for _, p := range rep.Phases {
		assert.True(t, p.Passed, p.Label)
	}

	require.NotNil(t, rep.Receipt)
	assert.NotEmpty(t, rep.Receipt.ReceiptID)
	assert.True(t, rep.Receipt.Valid())
	assert.Equal(t, uint64(0x1234), rep.Receipt.Computed)

	rec, err := mem.Get(context.Background(), rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.VerdictPass, rec.Verdict)
	assert.Equal(t, rep.Receipt.ReceiptID, rec.ReceiptID)
}

func TestRunFailsFastOnClockBackward(t *testing.T) {
	r, mem := testRunner()

	m := &manifest.RunManifest{
		ContractID: "contract-002",
		Pipeline:   twelveLabels(),
		Phases: manifest.PhaseInputs{
			Contract: &manifest.ContractInput{DeclaredPhaseCount: 12},
			Thermal:  &manifest.ThermalInput{Bound: 8, Samples: []uint64{5, 3}},
			// Must never run: the second thermal sample halts the run.
			Dashboard: &manifest.DashboardInput{Total: 10, Passed: 10, Failed: 0},
		},
	}

	rep, err := r.Run(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, rep.Pass())
	require.NotNil(t, rep.Violation)
	assert.Equal(t, violation.KindClockBackward, rep.Violation.Kind)

	// contract + two thermal invocations, nothing after the failure.
	require.Len(t, rep.Phases, 3)
	assert.False(t, rep.Phases[2].Passed)
	assert.Equal(t, "thermal_testing", rep.Phases[2].Label)

	rec, err := mem.Get(context.Background(), rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, "CLOCK_BACKWARD", rec.ViolationKind)
}

func TestRunRejectsWrongPipelineLength(t *testing.T) {
	r, _ := testRunner()

	m := &manifest.RunManifest{
		ContractID: "contract-003",
		Pipeline:   []string{"contract_definition", "thermal_testing"},
	}

	rep, err := r.Run(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, rep.Pass())
	require.NotNil(t, rep.Violation)
	assert.Equal(t, violation.KindInvalidPhaseCount, rep.Violation.Kind)
	assert.Empty(t, rep.Phases)
}

func TestRunRejectsEmptyContractID(t *testing.T) {
	r, _ := testRunner()

	rep, err := r.Run(context.Background(), &manifest.RunManifest{
		ContractID: "",
		Pipeline:   twelveLabels(),
	})
	require.NoError(t, err)
	require.NotNil(t, rep.Violation)
	assert.Equal(t, violation.KindMalformedContract, rep.Violation.Kind)
}

func TestRunIncompleteFinalization(t *testing.T) {
	r, mem := testRunner()

	m := &manifest.RunManifest{
		ContractID: "contract-004",
		Pipeline:   twelveLabels(),
		Phases: manifest.PhaseInputs{
			Contract: &manifest.ContractInput{DeclaredPhaseCount: 12},
		},
	}

	rep, err := r.Run(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, rep.Pass())
	assert.Nil(t, rep.Violation)
	assert.Equal(t, []pipeline.Label{
		pipeline.LabelThermalTesting,
		pipeline.LabelReceiptGeneration,
		pipeline.LabelVerificationPipeline,
	}, rep.Incomplete)

	rec, err := mem.Get(context.Background(), rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.VerdictFail, rec.Verdict)
	assert.Empty(t, rec.ViolationKind)
}

func TestRunArchivesEvidenceBundle(t *testing.T) {
	archive, err := evidence.NewFileArchive(t.TempDir())
	require.NoError(t, err)

	r, _ := testRunner()
	r.WithArchive(archive)

	m := &manifest.RunManifest{
		ContractID: "contract-005",
		Pipeline:   twelveLabels(),
		Phases: manifest.PhaseInputs{
			Contract: &manifest.ContractInput{DeclaredPhaseCount: 12},
			Thermal:  &manifest.ThermalInput{Bound: 8, Samples: []uint64{5}},
			Receipt:  &manifest.ReceiptInput{Version: 1, Declared: 0x1234, Computed: 0x1234},
			Verification: &manifest.VerificationInput{Expected: []string{
				"contract_definition", "thermal_testing", "receipt_generation",
			}},
		},
	}

	rep, err := r.Run(context.Background(), m)
	require.NoError(t, err)
	require.NotEmpty(t, rep.BundleDigest)

	data, err := archive.Get(context.Background(), rep.BundleDigest)
	require.NoError(t, err)

	b, err := evidence.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, b.RunID)
	assert.Equal(t, "PASS", b.Verdict)
	require.NotNil(t, b.Receipt)
	assert.Equal(t, rep.Receipt.ReceiptID, b.Receipt.ReceiptID)
}

// TestRunArchivedBundlesVerifyOffline round-trips every bundle shape the
// runner archives through the offline verifier, including runs refused
// before any phase executed and runs that stalled at finalization.
func TestRunArchivedBundlesVerifyOffline(t *testing.T) {
	archive, err := evidence.NewFileArchive(t.TempDir())
	require.NoError(t, err)

	r, _ := testRunner()
	r.WithArchive(archive)
	ctx := context.Background()

	verify := func(t *testing.T, digest string) *evidence.VerifyReport {
		t.Helper()
		require.NotEmpty(t, digest)
		vr, err := evidence.VerifyArchived(ctx, archive, digest)
		require.NoError(t, err)
		assert.True(t, vr.Verified, "checks: %+v", vr.Checks)
		return vr
	}

	t.Run("wrong pipeline length", func(t *testing.T) {
		rep, err := r.Run(ctx, &manifest.RunManifest{
			ContractID: "contract-007",
			Pipeline:   []string{"contract_definition", "thermal_testing"},
		})
		require.NoError(t, err)
		require.NotNil(t, rep.Violation)
		assert.Empty(t, rep.Phases)

		verify(t, rep.BundleDigest)
	})

	t.Run("incomplete finalization", func(t *testing.T) {
		rep, err := r.Run(ctx, &manifest.RunManifest{
			ContractID: "contract-008",
			Pipeline:   twelveLabels(),
			Phases: manifest.PhaseInputs{
				Contract: &manifest.ContractInput{DeclaredPhaseCount: 12},
			},
		})
		require.NoError(t, err)
		assert.Nil(t, rep.Violation)
		require.NotEmpty(t, rep.Incomplete)

		verify(t, rep.BundleDigest)

		data, err := archive.Get(ctx, rep.BundleDigest)
		require.NoError(t, err)
		b, err := evidence.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"thermal_testing", "receipt_generation", "verification_pipeline",
		}, b.Incomplete)
	})

	t.Run("phase violation", func(t *testing.T) {
		rep, err := r.Run(ctx, &manifest.RunManifest{
			ContractID: "contract-009",
			Pipeline:   twelveLabels(),
			Phases: manifest.PhaseInputs{
				Contract: &manifest.ContractInput{DeclaredPhaseCount: 12},
				Thermal:  &manifest.ThermalInput{Bound: 8, Samples: []uint64{5, 3}},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, rep.Violation)

		verify(t, rep.BundleDigest)
	})
}

func TestRunDeterministicTimestamps(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := New().WithClock(fixedClock{t: at}).WithIDSource(sequentialIDs())

	rep, err := r.Run(context.Background(), &manifest.RunManifest{
		ContractID: "contract-006",
		Pipeline:   twelveLabels(),
		Phases: manifest.PhaseInputs{
			Contract: &manifest.ContractInput{DeclaredPhaseCount: 12},
			Thermal:  &manifest.ThermalInput{Bound: 8, Samples: []uint64{5}},
			Receipt:  &manifest.ReceiptInput{Version: 1, Declared: 7, Computed: 7},
			Verification: &manifest.VerificationInput{Expected: []string{
				"contract_definition",
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "run-001", rep.RunID)
	assert.Equal(t, at, rep.StartedAt)
	assert.Equal(t, at, rep.FinishedAt)
	require.NotNil(t, rep.Receipt)
	assert.Equal(t, at, rep.Receipt.GeneratedAt)
}
