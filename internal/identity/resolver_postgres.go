package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	txcontext "skgov/pkg/platform/tx"
)

// PostgresResolver backs validator accounts with the validator_accounts
// table.
type PostgresResolver struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresResolver {
	return &PostgresResolver{db: db}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *PostgresResolver) querier(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return r.db
}

func (r *PostgresResolver) Resolve(ctx context.Context, kind Kind, sourceID, displayName string) (uuid.UUID, error) {
	var id uuid.UUID
	const lookup = `
		SELECT id FROM validator_accounts
		WHERE source_kind = $1 AND source_id = $2
	`
	err := r.querier(ctx).QueryRowContext(ctx, lookup, string(kind), sourceID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("lookup validator account: %w", err)
	}

	// Lazy creation. ON CONFLICT absorbs the race where two concurrent
	// adjudications resolve the same identifier for the first time.
	const insert = `
		INSERT INTO validator_accounts (id, source_kind, source_id, display_name, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (source_kind, source_id)
		DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id
	`
	err = r.querier(ctx).QueryRowContext(ctx, insert, uuid.New(), string(kind), sourceID, displayName).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create validator account: %w", err)
	}
	return id, nil
}
