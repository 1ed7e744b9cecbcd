// Package runner is the canonical caller of the verification engine. It
// consumes a run manifest, drives the declared phases in canonical order
// against a fresh execution context, halts at the first violation, then
// finalizes, persists an audit record, and archives an evidence bundle.
//
// The runner owns everything the pure engine refuses to: clocks, IDs,
// logging, telemetry, and I/O. All collaborators are injected; a Runner
// with none of them still produces a complete Report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/evidence"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/manifest"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/observability"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/pipeline"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/receipt"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/store"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// Runner executes verification runs.
type Runner struct {
	store   store.Store
	archive evidence.Archive
	obs     *observability.Provider
	clock   receipt.Clock
	gen     *receipt.Generator
	logger  *slog.Logger
	newID   func() string
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// New creates a runner with wall-clock time and no collaborators.
func New() *Runner {
	clock := wallClock{}
	return &Runner{
		clock:  clock,
		gen:    receipt.NewGenerator(clock),
		logger: slog.Default().With("component", "runner"),
		newID:  func() string { return uuid.New().String() },
	}
}

// WithStore sets the audit store runs are recorded into.
func (r *Runner) WithStore(s store.Store) *Runner {
	r.store = s
	return r
}

// WithArchive sets the evidence archive bundles are written to.
func (r *Runner) WithArchive(a evidence.Archive) *Runner {
	r.archive = a
	return r
}

// WithObservability sets the telemetry provider.
func (r *Runner) WithObservability(p *observability.Provider) *Runner {
	r.obs = p
	return r
}

// WithClock overrides the clock for deterministic testing. The receipt
// generator follows the same clock.
func (r *Runner) WithClock(c receipt.Clock) *Runner {
	r.clock = c
	r.gen = receipt.NewGenerator(c)
	return r
}

// WithIDSource overrides run-id generation for deterministic testing.
func (r *Runner) WithIDSource(newID func() string) *Runner {
	r.newID = newID
	return r
}

// Report is the caller-facing outcome of one verification run.
type Report struct {
	RunID      string               `json:"run_id"`
	ContractID string               `json:"contract_id"`
	Verdict    store.Verdict        `json:"verdict"`
	Phases     []store.PhaseOutcome `json:"phases"`
	// Violation is the first (and only) violation detected; nil on pass.
	Violation *violation.Violation `json:"violation,omitempty"`
	// Incomplete names the required phases missing at finalization, when
	// the run failed the finalizer rather than a phase invariant.
	Incomplete []pipeline.Label `json:"incomplete,omitempty"`
	Receipt    *receipt.Receipt `json:"receipt,omitempty"`
	// BundleDigest is the evidence archive key, when an archive is wired.
	BundleDigest string    `json:"bundle_digest,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Pass reports whether the run completed with no violation and a complete
// finalization.
func (rep *Report) Pass() bool {
	return rep.Verdict == store.VerdictPass
}

// Run executes one manifest. A violation or an incomplete finalization
// yields a FAIL report and a nil error; the error return is reserved for
// infrastructure failures (persistence, archiving). The report is non-nil
// whenever the manifest was well-formed enough to start a run.
func (r *Runner) Run(ctx context.Context, m *manifest.RunManifest) (*Report, error) {
	started := r.clock.Now().UTC()
	rep := &Report{
		RunID:      r.newID(),
		ContractID: m.ContractID,
		Verdict:    store.VerdictFail,
		StartedAt:  started,
	}

	var done func(string)
	if r.obs != nil {
		done = r.obs.TrackRun(ctx, m.ContractID)
		defer func() { done(string(rep.Verdict)) }()
	}

	// The manifest path owns the pipeline-length judgment; phase one only
	// sees the count the contract declares for itself.
	if len(m.Pipeline) != pipeline.PipelineSize {
		rep.Violation = violation.InvalidPhaseCount(m.ContractID, len(m.Pipeline), pipeline.PipelineSize)
		return r.finish(ctx, rep)
	}

	ectx, v := pipeline.New(m.ContractID)
	if v != nil {
		rep.Violation = v
		return r.finish(ctx, rep)
	}

	for _, ph := range buildPhases(m.Phases) {
		phaseStart := r.clock.Now()
		res := ph.Run(ectx)
		if r.obs != nil {
			r.obs.RecordPhaseDuration(ctx, string(ph.Label()), r.clock.Now().Sub(phaseStart))
		}

		outcome := store.PhaseOutcome{Label: string(ph.Label()), Passed: res.OK()}
		if !res.OK() {
			outcome.Detail = res.Violation.Error()
		}
		rep.Phases = append(rep.Phases, outcome)

		if !res.OK() {
			rep.Violation = res.Violation
			r.logger.WarnContext(ctx, "verification halted",
				"run_id", rep.RunID,
				"contract_id", m.ContractID,
				"phase", ph.Label(),
				"kind", res.Violation.Kind,
			)
			return r.finish(ctx, rep)
		}
	}

	if rec, ok := ectx.Receipt(); ok {
		minted := r.gen.Assemble(rec.ContractID, rec.Version, rec.Declared, rec.Computed)
		rep.Receipt = &minted
	}

	if err := ectx.Finalize(); err != nil {
		var incomplete *pipeline.IncompleteFinalizationError
		if !errors.As(err, &incomplete) {
			return rep, fmt.Errorf("finalize: %w", err)
		}
		rep.Incomplete = incomplete.Missing
		r.logger.WarnContext(ctx, "finalization incomplete",
			"run_id", rep.RunID,
			"contract_id", m.ContractID,
			"missing", incomplete.Missing,
		)
		return r.finish(ctx, rep)
	}

	rep.Verdict = store.VerdictPass
	return r.finish(ctx, rep)
}

// finish stamps the report, records telemetry, persists the audit record,
// and archives the evidence bundle. It never alters the verdict.
func (r *Runner) finish(ctx context.Context, rep *Report) (*Report, error) {
	rep.FinishedAt = r.clock.Now().UTC()

	if rep.Violation != nil && r.obs != nil {
		r.obs.RecordViolation(ctx, string(rep.Violation.Kind), rep.Violation.Phase)
	}

	if r.archive != nil {
		data, err := evidence.Encode(r.bundleFor(rep))
		if err != nil {
			return rep, fmt.Errorf("encode evidence bundle: %w", err)
		}
		digest, err := r.archive.Put(ctx, data)
		if err != nil {
			return rep, fmt.Errorf("archive evidence bundle: %w", err)
		}
		rep.BundleDigest = digest
	}

	if r.store != nil {
		if err := r.store.Save(ctx, r.recordFor(rep)); err != nil {
			return rep, fmt.Errorf("persist run record: %w", err)
		}
	}

	r.logger.InfoContext(ctx, "verification run finished",
		"run_id", rep.RunID,
		"contract_id", rep.ContractID,
		"verdict", rep.Verdict,
		"phases", len(rep.Phases),
	)
	return rep, nil
}

func (r *Runner) recordFor(rep *Report) store.RunRecord {
	rec := store.RunRecord{
		RunID:      rep.RunID,
		ContractID: rep.ContractID,
		Verdict:    rep.Verdict,
		Phases:     rep.Phases,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
	}
	if rep.Violation != nil {
		rec.ViolationKind = string(rep.Violation.Kind)
	}
	if rep.Receipt != nil {
		rec.ReceiptID = rep.Receipt.ReceiptID
		rec.ReceiptVersion = rep.Receipt.Version
		rec.Checksum = rep.Receipt.Computed
	}
	return rec
}

func (r *Runner) bundleFor(rep *Report) evidence.Bundle {
	b := evidence.Bundle{
		FormatVersion: evidence.BundleFormatVersion,
		RunID:         rep.RunID,
		ContractID:    rep.ContractID,
		Verdict:       string(rep.Verdict),
		Violation:     rep.Violation,
		Receipt:       rep.Receipt,
		StartedAt:     rep.StartedAt,
		FinishedAt:    rep.FinishedAt,
	}
	for _, p := range rep.Phases {
		b.Phases = append(b.Phases, evidence.PhaseRecord{
			Label:  p.Label,
			Passed: p.Passed,
			Detail: p.Detail,
		})
	}
	for _, l := range rep.Incomplete {
		b.Incomplete = append(b.Incomplete, string(l))
	}
	return b
}

// buildPhases assembles the phase sequence from the manifest's input
// blocks, always in canonical pipeline order. Absent blocks are skipped;
// the finalizer judges whether enough of the pipeline actually ran. A
// thermal block expands to one phase invocation per sample so the
// monotonicity history is exercised sample by sample.
func buildPhases(in manifest.PhaseInputs) []pipeline.Phase {
	var phases []pipeline.Phase

	if c := in.Contract; c != nil {
		phases = append(phases, pipeline.ContractDefinition{DeclaredPhaseCount: c.DeclaredPhaseCount})
	}
	if t := in.Thermal; t != nil {
		for _, tau := range t.Samples {
			phases = append(phases, pipeline.ThermalTesting{Tau: tau, Bound: t.Bound})
		}
	}
	if e := in.Effects; e != nil {
		phases = append(phases, pipeline.EffectsTracking{Declared: e.Declared, Observed: e.Observed})
	}
	if s := in.StateMachine; s != nil {
		phases = append(phases, pipeline.StateMachineValidation{
			Initial:     s.Initial,
			ValidStates: s.ValidStates,
			Transitions: s.Transitions,
			Events:      s.Events,
		})
	}
	if rc := in.Receipt; rc != nil {
		phases = append(phases, pipeline.ReceiptGeneration{
			Version:  rc.Version,
			Declared: rc.Declared,
			Computed: rc.Computed,
		})
	}
	if s := in.Swarm; s != nil {
		phases = append(phases, pipeline.SwarmOrchestration{Scheduled: s.Scheduled, Executed: s.Executed})
	}
	if v := in.Verification; v != nil {
		expected := make([]pipeline.Label, len(v.Expected))
		for i, l := range v.Expected {
			expected[i] = pipeline.Label(l)
		}
		phases = append(phases, pipeline.VerificationPipeline{Expected: expected})
	}
	if l := in.Learning; l != nil {
		phases = append(phases, pipeline.ContinuousLearning{Samples: l.Samples, Prediction: l.Prediction})
	}
	if c := in.Consensus; c != nil {
		phases = append(phases, pipeline.DistributedConsensus{Approvals: c.Approvals, Total: c.Total})
	}
	if s := in.Snapshot; s != nil {
		phases = append(phases, pipeline.TimeTravelDebugging{
			SnapshotVersion: s.SnapshotVersion,
			ExpectedVersion: s.ExpectedVersion,
		})
	}
	if p := in.Prophet; p != nil {
		phases = append(phases, pipeline.PerformanceProphet{PredictedTau: p.PredictedTau, Confidence: p.Confidence})
	}
	if d := in.Dashboard; d != nil {
		phases = append(phases, pipeline.QualityDashboard{Total: d.Total, Passed: d.Passed, Failed: d.Failed})
	}

	return phases
}
