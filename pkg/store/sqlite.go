package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists run records in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps db and ensures the schema exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_records (
		run_id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL,
		verdict TEXT NOT NULL,
		violation_kind TEXT NOT NULL DEFAULT '',
		phases TEXT NOT NULL DEFAULT '[]',
		receipt_id TEXT NOT NULL DEFAULT '',
		receipt_version INTEGER NOT NULL DEFAULT 0,
		checksum TEXT NOT NULL DEFAULT '0',
		started_at DATETIME,
		finished_at DATETIME
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, rec RunRecord) error {
	phases, err := json.Marshal(rec.Phases)
	if err != nil {
		return fmt.Errorf("encode phases: %w", err)
	}
	query := `INSERT OR REPLACE INTO run_records (
		run_id, contract_id, verdict, violation_kind, phases,
		receipt_id, receipt_version, checksum, started_at, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		rec.RunID, rec.ContractID, string(rec.Verdict), rec.ViolationKind, string(phases),
		rec.ReceiptID, int64(rec.ReceiptVersion), strconv.FormatUint(rec.Checksum, 10),
		rec.StartedAt.UTC().Format(time.RFC3339Nano), rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save run record: %w", err)
	}
	return nil
}

const sqliteRecordColumns = `run_id, contract_id, verdict, violation_kind, phases,
	receipt_id, receipt_version, checksum, started_at, finished_at`

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, runID string) (RunRecord, error) {
	query := `SELECT ` + sqliteRecordColumns + ` FROM run_records WHERE run_id = ?`
	rec, err := scanSQLiteRecord(s.db.QueryRowContext(ctx, query, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	return rec, err
}

// ListRecent implements Store.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT ` + sqliteRecordColumns + ` FROM run_records
		ORDER BY started_at DESC, run_id ASC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountByVerdict implements Store.
func (s *SQLiteStore) CountByVerdict(ctx context.Context) (map[Verdict]int, error) {
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (RunRecord, error) {
	var (
		rec            RunRecord
		verdict        string
		phasesJSON     string
		receiptVersion int64
		checksum       string
		startedAt      string
		finishedAt     string
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
	if phasesJSON != "" {
		if err := json.Unmarshal([]byte(phasesJSON), &rec.Phases); err != nil {
			return RunRecord{}, fmt.Errorf("decode phases: %w", err)
		}
	}
	rec.StartedAt = parseStoredTime(startedAt)
	rec.FinishedAt = parseStoredTime(finishedAt)
	return rec, nil
}

func parseStoredTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
