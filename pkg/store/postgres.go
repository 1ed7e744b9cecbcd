package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore persists run records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps db. Call Init to ensure the schema.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS run_records (
	run_id TEXT PRIMARY KEY,
	contract_id TEXT NOT NULL,
	verdict TEXT NOT NULL,
	violation_kind TEXT NOT NULL DEFAULT '',
	phases JSONB NOT NULL DEFAULT '[]',
	receipt_id TEXT NOT NULL DEFAULT '',
	receipt_version BIGINT NOT NULL DEFAULT 0,
	checksum TEXT NOT NULL DEFAULT '0',
	started_at TIMESTAMPTZ,
	finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS run_records_started_at_idx ON run_records (started_at DESC);
`

// Init creates the schema if missing.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, pgSchema)
	return err
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, rec RunRecord) error {
	phases, err := json.Marshal(rec.Phases)
	if err != nil {
		return fmt.Errorf("encode phases: %w", err)
	}
	query := `
		INSERT INTO run_records (
			run_id, contract_id, verdict, violation_kind, phases,
			receipt_id, receipt_version, checksum, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO UPDATE SET
			verdict = EXCLUDED.verdict,
			violation_kind = EXCLUDED.violation_kind,
			phases = EXCLUDED.phases,
			receipt_id = EXCLUDED.receipt_id,
			receipt_version = EXCLUDED.receipt_version,
			checksum = EXCLUDED.checksum,
			finished_at = EXCLUDED.finished_at
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.RunID, rec.ContractID, string(rec.Verdict), rec.ViolationKind, string(phases),
		rec.ReceiptID, int64(rec.ReceiptVersion), strconv.FormatUint(rec.Checksum, 10),
		rec.StartedAt.UTC(), rec.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save run record: %w", err)
	}
	return nil
}

const pgRecordColumns = `run_id, contract_id, verdict, violation_kind, phases,
	receipt_id, receipt_version, checksum, started_at, finished_at`

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, runID string) (RunRecord, error) {
	query := `SELECT ` + pgRecordColumns + ` FROM run_records WHERE run_id = $1`
	rec, err := scanPGRecord(s.db.QueryRowContext(ctx, query, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	return rec, err
}

// ListRecent implements Store.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT ` + pgRecordColumns + ` FROM run_records
		ORDER BY started_at DESC, run_id ASC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanPGRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByVerdict implements Store.
func (s *PostgresStore) CountByVerdict(ctx context.Context) (map[Verdict]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT verdict, COUNT(*) FROM run_records GROUP BY verdict`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[Verdict]int)
	for rows.Next() {
		var v string
		var n int
		if err := rows.Scan(&v, &n); err != nil {
			return nil, err
		}
		counts[Verdict(v)] = n
	}
	return counts, rows.Err()
}

func scanPGRecord(row rowScanner) (RunRecord, error) {
	var (
		rec            RunRecord
		verdict        string
		phasesJSON     []byte
		receiptVersion int64
		checksum       string
		startedAt      time.Time
		finishedAt     time.Time
	)
	err := row.Scan(&rec.RunID, &rec.ContractID, &verdict, &rec.ViolationKind, &phasesJSON,
		&rec.ReceiptID, &receiptVersion, &checksum, &startedAt, &finishedAt)
	if err != nil {
		return RunRecord{}, err
	}

	rec.Verdict = Verdict(verdict)
	rec.ReceiptVersion = uint64(receiptVersion)
	if rec.Checksum, err = strconv.ParseUint(checksum, 10, 64); err != nil {
		return RunRecord{}, fmt.Errorf("decode checksum %q: %w", checksum, err)
	}
	if len(phasesJSON) > 0 {
		if err := json.Unmarshal(phasesJSON, &rec.Phases); err != nil {
			return RunRecord{}, fmt.Errorf("decode phases: %w", err)
		}
	}
	rec.StartedAt = startedAt
	rec.FinishedAt = finishedAt
	return rec, nil
}
