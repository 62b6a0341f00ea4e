package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/phbpx/leadform"
)

// lib/pq errorCodeNames
// https://github.com/lib/pq/blob/master/error.go#L178
const uniqueViolation = "23505"

var errDuplicatedSubmission = errors.New("submission id already stored")

type SubmissionStore struct {
	db *sqlx.DB
}

func NewSubmissionStore(db *sqlx.DB) *SubmissionStore {
	return &SubmissionStore{
		db: db,
	}
}

// Create stores fs. Any failure comes back as a *leadform.PersistenceError.
func (s *SubmissionStore) Create(ctx context.Context, fs leadform.FormSubmission) error {
	if err := s.create(ctx, fs); err != nil {
		return &leadform.PersistenceError{Err: err}
	}
	return nil
}

func (s *SubmissionStore) create(ctx context.Context, fs leadform.FormSubmission) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	query := `
	INSERT INTO form_submissions (
		id, name, phone, created_at
	) VALUES (
		:id, :name, :phone, :created_at
	)`

	if _, err := tx.NamedExecContext(ctx, query, fs); err != nil {
		tx.Rollback()
		var pqerr *pq.Error
		if errors.As(err, &pqerr) && pqerr.Code == uniqueViolation {
			return errDuplicatedSubmission
		}
		return fmt.Errorf("insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
