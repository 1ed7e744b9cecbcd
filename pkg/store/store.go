// Package store persists verification run outcomes for audit. Three
// backends share one interface: an in-memory map for tests and
// single-shot CLI runs, SQLite for local durable history, and Postgres
// for fleet deployments.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no record exists for a run id.
var ErrNotFound = errors.New("run record not found")

// Verdict is the terminal outcome of a verification run.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
)

// PhaseOutcome is one phase's result inside a stored run.
type PhaseOutcome struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// RunRecord is one archived verification run.
type RunRecord struct {
	RunID          string         `json:"run_id"`
	ContractID     string         `json:"contract_id"`
	Verdict        Verdict        `json:"verdict"`
	ViolationKind  string         `json:"violation_kind,omitempty"`
	Phases         []PhaseOutcome `json:"phases"`
	ReceiptID      string         `json:"receipt_id,omitempty"`
	ReceiptVersion uint64         `json:"receipt_version,omitempty"`
	Checksum       uint64         `json:"checksum,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
}

// Store is the audit persistence boundary.
type Store interface {
	// Save upserts a record keyed by run id.
	Save(ctx context.Context, rec RunRecord) error

	// Get returns the record for runID, or ErrNotFound.
	Get(ctx context.Context, runID string) (RunRecord, error)

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]RunRecord, error)

	// CountByVerdict tallies stored runs per verdict.
	CountByVerdict(ctx context.Context) (map[Verdict]int, error)
}
