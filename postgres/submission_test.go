package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/phbpx/leadform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SubmissionStore, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewSubmissionStore(sqlx.NewDb(raw, "postgres")), mock
}

func testSubmission() leadform.FormSubmission {
	return leadform.FormSubmission{
		ID:        "6a3c1a52-0f4e-4c43-9d7e-1f7d1b0e7b6a",
		Name:      "Ana",
		Phone:     "612345678",
		CreatedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}
}

func TestSubmissionStore_Create(t *testing.T) {
	store, mock := newMockStore(t)
	fs := testSubmission()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO form_submissions").
		WithArgs(fs.ID, fs.Name, fs.Phone, fs.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Create(context.Background(), fs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionStore_CreateFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
		cause error
	}{
		{
			name: "begin fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("no connection"))
			},
		},
		{
			name: "insert fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO form_submissions").WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
		},
		{
			name: "duplicate id",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO form_submissions").WillReturnError(&pq.Error{Code: uniqueViolation})
				mock.ExpectRollback()
			},
			cause: errDuplicatedSubmission,
		},
		{
			name: "commit fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO form_submissions").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setup(mock)

			err := store.Create(context.Background(), testSubmission())
			require.Error(t, err)

			var perr *leadform.PersistenceError
			assert.True(t, errors.As(err, &perr))
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
