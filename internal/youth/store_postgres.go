package youth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skgov/pkg/platform/sentinel"
	txcontext "skgov/pkg/platform/tx"
)

// PostgresStore persists youth profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	const query = `
		SELECT id, first_name, last_name, barangay, birth_date, age,
		       contact_number, email, validation_status, validated_by,
		       validated_at, is_active, is_anonymized, created_at, updated_at
		FROM youth_profiles
		WHERE id = $1
	`
	var p Profile
	err := s.execer(ctx).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Barangay, &p.BirthDate, &p.Age,
		&p.ContactNumber, &p.Email, &p.ValidationStatus, &p.ValidatedBy,
		&p.ValidatedAt, &p.IsActive, &p.IsAnonymized, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get youth profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdateContact(ctx context.Context, id uuid.UUID, contactNumber, email string) error {
	const query = `
		UPDATE youth_profiles
		SET contact_number = COALESCE(NULLIF($2, ''), contact_number),
		    email          = COALESCE(NULLIF($3, ''), email),
		    updated_at     = now()
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, id, contactNumber, email)
	if err != nil {
		return fmt.Errorf("update youth contact: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) MarkValidated(ctx context.Context, id uuid.UUID, validatedBy string, at time.Time) (bool, error) {
	// The status guard lives in the WHERE clause so an already-validated
	// profile is never rewritten, even under concurrent approvals.
	const query = `
		UPDATE youth_profiles
		SET validation_status = $2,
		    validated_by      = $3,
		    validated_at      = $4,
		    updated_at        = now()
		WHERE id = $1 AND validation_status <> $2
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, id, ProfileStatusValidated, validatedBy, at)
	if err != nil {
		return false, fmt.Errorf("mark youth validated: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark youth validated: %w", err)
	}
	return affected > 0, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
