package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-journal-vault/internal/logger"
	"github.com/MKhiriev/go-journal-vault/models"
)

type fixedIDs string

func (f fixedIDs) Generate() string { return string(f) }

func newTestDB(t *testing.T, dialect string) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return newDB(conn, dialect, logger.Nop()), mock
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

var envelopeRowColumns = []string{"id", "journal_id", "payload", "created_at"}

const samplePayload = `{"version":1,"algorithmId":"AES-256-GCM"}`

// ── Store ──

func TestEnvelopeRepository_Store(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dialect string
		env     models.StoredEnvelope
		setup   func(m sqlmock.Sqlmock)
		wantID  string
		wantErr error
	}{
		{
			name:    "generates id (sqlite placeholders)",
			dialect: DialectSQLite,
			env:     models.StoredEnvelope{JournalID: "j1", Payload: []byte(samplePayload), CreatedAt: createdAt},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO envelopes \(id,journal_id,payload,created_at\) VALUES \(\?,\?,\?,\?\)`).
					WithArgs("gen-id", "j1", samplePayload, createdAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			wantID: "gen-id",
		},
		{
			name:    "keeps given id (postgres placeholders)",
			dialect: DialectPostgres,
			env:     models.StoredEnvelope{ID: "given", JournalID: "j1", Payload: []byte(samplePayload), CreatedAt: createdAt},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO envelopes \(id,journal_id,payload,created_at\) VALUES \(\$1,\$2,\$3,\$4\)`).
					WithArgs("given", "j1", samplePayload, createdAt).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			wantID: "given",
		},
		{
			name:    "sqlite primary key conflict",
			dialect: DialectSQLite,
			env:     models.StoredEnvelope{ID: "dup", JournalID: "j1", Payload: []byte(samplePayload)},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO envelopes`).
					WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey})
			},
			wantErr: ErrEnvelopeAlreadyExists,
		},
		{
			name:    "postgres unique violation",
			dialect: DialectPostgres,
			env:     models.StoredEnvelope{ID: "dup", JournalID: "j1", Payload: []byte(samplePayload)},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO envelopes`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: ErrEnvelopeAlreadyExists,
		},
		{
			name:    "no rows affected",
			dialect: DialectSQLite,
			env:     models.StoredEnvelope{ID: "x", JournalID: "j1", Payload: []byte(samplePayload)},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO envelopes`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: ErrEnvelopeNotSaved,
		},
		{
			name:    "driver error",
			dialect: DialectSQLite,
			env:     models.StoredEnvelope{ID: "x", JournalID: "j1", Payload: []byte(samplePayload)},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO envelopes`).WillReturnError(errors.New("disk I/O error"))
			},
			wantErr: ErrExecutingStatement,
		},
		{
			name:    "retries busy database",
			dialect: DialectSQLite,
			env:     models.StoredEnvelope{ID: "x", JournalID: "j1", Payload: []byte(samplePayload)},
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO envelopes`).WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})
				m.ExpectExec(`INSERT INTO envelopes`).WillReturnResult(sqlmock.NewResult(1, 1))
			},
			wantID: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newTestDB(t, tt.dialect)
			tt.setup(mock)
			repo := NewEnvelopeRepository(db, fixedIDs("gen-id"), logger.Nop())

			id, err := repo.Store(testContext(), tt.env)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ── Fetch ──

func TestEnvelopeRepository_Fetch(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock := newTestDB(t, DialectSQLite)
		mock.ExpectQuery(`SELECT id, journal_id, payload, created_at FROM envelopes WHERE \(journal_id = \? AND id = \?\)`).
			WithArgs("j1", "e1").
			WillReturnRows(sqlmock.NewRows(envelopeRowColumns).AddRow("e1", "j1", samplePayload, createdAt))

		got, err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).Fetch(testContext(), "j1", "e1")
		require.NoError(t, err)
		assert.Equal(t, models.StoredEnvelope{ID: "e1", JournalID: "j1", Payload: []byte(samplePayload), CreatedAt: createdAt}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newTestDB(t, DialectSQLite)
		mock.ExpectQuery(`SELECT (.+) FROM envelopes`).
			WithArgs("j1", "missing").
			WillReturnRows(sqlmock.NewRows(envelopeRowColumns))

		_, err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).Fetch(testContext(), "j1", "missing")
		assert.ErrorIs(t, err, ErrEnvelopeNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newTestDB(t, DialectPostgres)
		mock.ExpectQuery(`SELECT (.+) FROM envelopes WHERE \(journal_id = \$1 AND id = \$2\)`).
			WillReturnError(sql.ErrConnDone)

		_, err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).Fetch(testContext(), "j1", "e1")
		assert.ErrorIs(t, err, ErrScanningRow)
	})
}

// ── List ──

func TestEnvelopeRepository_List(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	t.Run("ordered rows", func(t *testing.T) {
		db, mock := newTestDB(t, DialectSQLite)
		mock.ExpectQuery(`SELECT id, journal_id, payload, created_at FROM envelopes WHERE journal_id = \? ORDER BY created_at ASC, id ASC`).
			WithArgs("j1").
			WillReturnRows(sqlmock.NewRows(envelopeRowColumns).
				AddRow("a", "j1", `{"n":1}`, t1).
				AddRow("b", "j1", `{"n":2}`, t2))

		got, err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).List(testContext(), "j1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, []byte(`{"n":2}`), got[1].Payload)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty journal", func(t *testing.T) {
		db, mock := newTestDB(t, DialectSQLite)
		mock.ExpectQuery(`SELECT (.+) FROM envelopes`).WillReturnRows(sqlmock.NewRows(envelopeRowColumns))

		got, err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).List(testContext(), "j1")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("row error", func(t *testing.T) {
		db, mock := newTestDB(t, DialectSQLite)
		mock.ExpectQuery(`SELECT (.+) FROM envelopes`).
			WillReturnRows(sqlmock.NewRows(envelopeRowColumns).
				AddRow("a", "j1", `{}`, t1).
				RowError(0, errors.New("boom")))

		_, err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).List(testContext(), "j1")
		assert.ErrorIs(t, err, ErrScanningRows)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newTestDB(t, DialectSQLite)
		mock.ExpectQuery(`SELECT (.+) FROM envelopes`).WillReturnError(errors.New("boom"))

		_, err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).List(testContext(), "j1")
		assert.ErrorIs(t, err, ErrExecutingQuery)
	})
}

// ── Delete ──

func TestEnvelopeRepository_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		db, mock := newTestDB(t, DialectPostgres)
		mock.ExpectExec(`DELETE FROM envelopes WHERE \(journal_id = \$1 AND id = \$2\)`).
			WithArgs("j1", "e1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).Delete(testContext(), "j1", "e1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newTestDB(t, DialectSQLite)
		mock.ExpectExec(`DELETE FROM envelopes`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).Delete(testContext(), "j1", "nope")
		assert.ErrorIs(t, err, ErrEnvelopeNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		db, mock := newTestDB(t, DialectSQLite)
		mock.ExpectExec(`DELETE FROM envelopes`).WillReturnError(errors.New("readonly database"))

		err := NewEnvelopeRepository(db, fixedIDs(""), logger.Nop()).Delete(testContext(), "j1", "e1")
		assert.ErrorIs(t, err, ErrExecutingStatement)
	})
}
