package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgresStoreSave verifies the upsert statement and its arguments.
func TestPostgresStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO run_records")).
		WithArgs("run-1", "contract-001", "PASS", "", `[{"label":"contract_definition","passed":true},{"label":"thermal_testing","passed":true}]`,
			"rcpt-run-1", int64(1), "16045690981402826360", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := testRecord("run-1", "contract-001", VerdictPass, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresStoreGet verifies row scanning, including the checksum TEXT
// decode and the not-found mapping.
func TestPostgresStoreGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	ctx := context.Background()
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cols := []string{"run_id", "contract_id", "verdict", "violation_kind", "phases",
		"receipt_id", "receipt_version", "checksum", "started_at", "finished_at"}

	rows := sqlmock.NewRows(cols).
		AddRow("run-1", "contract-001", "FAIL", "INSUFFICIENT_QUORUM",
			[]byte(`[{"label":"distributed_consensus","passed":false,"detail":"5 of 9 approvals"}]`),
			"rcpt-run-1", int64(2), "18446744073709551615", started, started.Add(time.Second))

	mock.ExpectQuery(regexp.QuoteMeta("FROM run_records WHERE run_id = $1")).
		WithArgs("run-1").
		WillReturnRows(rows)

	rec, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, VerdictFail, rec.Verdict)
	assert.Equal(t, "INSUFFICIENT_QUORUM", rec.ViolationKind)
	assert.Equal(t, ^uint64(0), rec.Checksum)
	assert.Equal(t, uint64(2), rec.ReceiptVersion)
	require.Len(t, rec.Phases, 1)
	assert.Equal(t, "distributed_consensus", rec.Phases[0].Label)

	mock.ExpectQuery(regexp.QuoteMeta("FROM run_records WHERE run_id = $1")).
		WithArgs("run-absent").
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = s.Get(ctx, "run-absent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestPostgresStoreCountByVerdict verifies the aggregate query decode.
func TestPostgresStoreCountByVerdict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT verdict, COUNT(*) FROM run_records GROUP BY verdict")).
		WillReturnRows(sqlmock.NewRows([]string{"verdict", "count"}).
			AddRow("PASS", 7).
			AddRow("FAIL", 3))

	counts, err := s.CountByVerdict(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[Verdict]int{VerdictPass: 7, VerdictFail: 3}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
