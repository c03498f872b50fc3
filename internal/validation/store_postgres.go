package validation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"skgov/pkg/platform/sentinel"
	txcontext "skgov/pkg/platform/tx"
)

// PostgresStore persists responses and the validation queue in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// GetQueueContext locks the queue entry and its response for the duration
// of the surrounding transaction so concurrent adjudications of the same
// entry serialize at the row level.
func (s *PostgresStore) GetQueueContext(ctx context.Context, queueID uuid.UUID) (*QueueContext, error) {
	const query = `
		SELECT q.id, q.response_id, q.youth_id, q.voter_match, q.validation_score, q.created_at,
		       r.id, r.youth_id, r.batch_id, r.status, r.validated_by, r.validated_at,
		       r.validation_notes, r.superseded_by, r.created_at, r.updated_at,
		       p.id, p.first_name, p.last_name, p.barangay, p.birth_date, p.age,
		       p.contact_number, p.email, p.validation_status, p.validated_by,
		       p.validated_at, p.is_active, p.is_anonymized, p.created_at, p.updated_at
		FROM validation_queue q
		JOIN survey_responses r ON r.id = q.response_id
		JOIN youth_profiles p ON p.id = q.youth_id
		WHERE q.id = $1
		FOR UPDATE OF q, r
	`
	var qc QueueContext
	err := s.execer(ctx).QueryRowContext(ctx, query, queueID).Scan(
		&qc.Entry.ID, &qc.Entry.ResponseID, &qc.Entry.YouthID,
		&qc.Entry.VoterMatch, &qc.Entry.ValidationScore, &qc.Entry.CreatedAt,
		&qc.Response.ID, &qc.Response.YouthID, &qc.Response.BatchID,
		&qc.Response.Status, &qc.Response.ValidatedBy, &qc.Response.ValidatedAt,
		&qc.Response.ValidationNotes, &qc.Response.SupersededBy,
		&qc.Response.CreatedAt, &qc.Response.UpdatedAt,
		&qc.Profile.ID, &qc.Profile.FirstName, &qc.Profile.LastName,
		&qc.Profile.Barangay, &qc.Profile.BirthDate, &qc.Profile.Age,
		&qc.Profile.ContactNumber, &qc.Profile.Email, &qc.Profile.ValidationStatus,
		&qc.Profile.ValidatedBy, &qc.Profile.ValidatedAt,
		&qc.Profile.IsActive, &qc.Profile.IsAnonymized,
		&qc.Profile.CreatedAt, &qc.Profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load queue context: %w", err)
	}
	return &qc, nil
}

func (s *PostgresStore) FindLatestDuplicate(ctx context.Context, batchID, youthID, excluding uuid.UUID) (*DuplicateRef, error) {
	const query = `
		SELECT id, status
		FROM survey_responses
		WHERE batch_id = $1 AND youth_id = $2 AND id <> $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	var ref DuplicateRef
	err := s.execer(ctx).QueryRowContext(ctx, query, batchID, youthID, excluding).
		Scan(&ref.ResponseID, &ref.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate response: %w", err)
	}
	return &ref, nil
}

// SupersedeResponse only rewrites a row that is still validated. The
// duplicate row is not covered by the queue-context lock, so a concurrent
// adjudication may have moved it first; that surfaces as ErrConflict.
func (s *PostgresStore) SupersedeResponse(ctx context.Context, responseID, supersededBy uuid.UUID, note string) error {
	const query = `
		UPDATE survey_responses
		SET status           = $2,
		    superseded_by    = $3,
		    validation_notes = trim(both E'\n' from validation_notes || E'\n' || $4),
		    updated_at       = now()
		WHERE id = $1 AND status = 'validated'
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, responseID, StatusRejected, supersededBy, note)
	if err != nil {
		return fmt.Errorf("supersede response: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}
	return s.writeConflict(ctx, responseID)
}

// DeleteResponse refuses to remove a validated row: the resolver only
// replaces non-validated duplicates.
func (s *PostgresStore) DeleteResponse(ctx context.Context, responseID uuid.UUID) error {
	ex := s.execer(ctx)
	if _, err := ex.ExecContext(ctx, `DELETE FROM validation_queue WHERE response_id = $1`, responseID); err != nil {
		return fmt.Errorf("delete queue entry for response: %w", err)
	}
	res, err := ex.ExecContext(ctx, `DELETE FROM survey_responses WHERE id = $1 AND status <> 'validated'`, responseID)
	if err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}
	return s.writeConflict(ctx, responseID)
}

// writeConflict distinguishes a vanished row from one whose status changed
// under a concurrent adjudication.
func (s *PostgresStore) writeConflict(ctx context.Context, responseID uuid.UUID) error {
	var exists bool
	err := s.execer(ctx).
		QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM survey_responses WHERE id = $1)`, responseID).
		Scan(&exists)
	if err != nil {
		return fmt.Errorf("check response: %w", err)
	}
	if exists {
		return sentinel.ErrConflict
	}
	return sentinel.ErrNotFound
}

func (s *PostgresStore) SetResponseStatus(ctx context.Context, responseID uuid.UUID, status ValidationStatus, validatedBy string, validatedAt time.Time, comments string) error {
	const query = `
		UPDATE survey_responses
		SET status       = $2,
		    validated_by = $3,
		    validated_at = $4,
		    validation_notes = CASE WHEN $5 = '' THEN validation_notes
		                            ELSE trim(both E'\n' from validation_notes || E'\n' || $5) END,
		    updated_at   = now()
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, responseID, status, validatedBy, validatedAt, comments)
	if err != nil {
		return fmt.Errorf("set response status: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteQueueEntry(ctx context.Context, queueID uuid.UUID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM validation_queue WHERE id = $1`, queueID)
	if err != nil {
		return fmt.Errorf("delete queue entry: %w", err)
	}
	return requireRow(res)
}

const residentSelect = `
	SELECT q.id, r.id, r.youth_id, r.batch_id,
	       p.first_name, p.last_name, p.age, p.barangay,
	       r.status, q.voter_match, q.validation_score,
	       r.validated_by, r.validated_at, r.created_at,
	       staff.display_name, sk.display_name
	FROM validation_queue q
	JOIN survey_responses r ON r.id = q.response_id
	JOIN youth_profiles p ON p.id = q.youth_id
	LEFT JOIN validator_accounts staff
	       ON staff.source_kind = 'staff' AND staff.source_id = r.validated_by
	LEFT JOIN validator_accounts sk
	       ON sk.source_kind = 'sk_official' AND sk.source_id = r.validated_by
`

const dequeuedSelect = `
	SELECT NULL::uuid, r.id, r.youth_id, r.batch_id,
	       p.first_name, p.last_name, p.age, p.barangay,
	       r.status, NULL::text, NULL::int,
	       r.validated_by, r.validated_at, r.created_at,
	       staff.display_name, sk.display_name
	FROM survey_responses r
	JOIN youth_profiles p ON p.id = r.youth_id
	LEFT JOIN validation_queue q ON q.response_id = r.id
	LEFT JOIN validator_accounts staff
	       ON staff.source_kind = 'staff' AND staff.source_id = r.validated_by
	LEFT JOIN validator_accounts sk
	       ON sk.source_kind = 'sk_official' AND sk.source_id = r.validated_by
`

func (s *PostgresStore) ListResident(ctx context.Context, f ListFilters) ([]QueueItem, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status == string(StatusPending) || f.Status == string(StatusValidated) {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("r.status = $%d", len(args)))
	}
	conds, args = appendCommonFilters(conds, args, f)
	if f.VoterMatch != "" {
		args = append(args, f.VoterMatch)
		conds = append(conds, fmt.Sprintf("q.voter_match = $%d", len(args)))
	}
	if f.ScoreMin != nil {
		args = append(args, *f.ScoreMin)
		conds = append(conds, fmt.Sprintf("q.validation_score >= $%d", len(args)))
	}
	if f.ScoreMax != nil {
		args = append(args, *f.ScoreMax)
		conds = append(conds, fmt.Sprintf("q.validation_score <= $%d", len(args)))
	}

	query := residentSelect + whereClause(conds)
	return s.queryItems(ctx, query, args)
}

func (s *PostgresStore) ListDequeuedRejected(ctx context.Context, f ListFilters) ([]QueueItem, error) {
	conds := []string{"r.status = 'rejected'", "q.id IS NULL"}
	var args []any
	conds, args = appendCommonFilters(conds, args, f)

	query := dequeuedSelect + whereClause(conds)
	return s.queryItems(ctx, query, args)
}

// appendCommonFilters adds the search and barangay conditions shared by the
// resident and dequeued views so the union view filters both halves
// identically.
func appendCommonFilters(conds []string, args []any, f ListFilters) ([]string, []any) {
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(p.first_name ILIKE $%d OR p.last_name ILIKE $%d OR p.contact_number ILIKE $%d OR p.email ILIKE $%d)",
			n, n, n, n))
	}
	if f.Barangay != "" {
		args = append(args, f.Barangay)
		conds = append(conds, fmt.Sprintf("p.barangay = $%d", len(args)))
	}
	return conds, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (s *PostgresStore) queryItems(ctx context.Context, query string, args []any) ([]QueueItem, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue items: %w", err)
	}
	return items, nil
}

func scanQueueItem(rows *sql.Rows) (QueueItem, error) {
	var (
		item      QueueItem
		staffName sql.NullString
		skName    sql.NullString
	)
	err := rows.Scan(
		&item.QueueID, &item.ResponseID, &item.YouthID, &item.BatchID,
		&item.FirstName, &item.LastName, &item.Age, &item.Barangay,
		&item.Status, &item.VoterMatch, &item.ValidationScore,
		&item.ValidatedBy, &item.ValidatedAt, &item.SubmittedAt,
		&staffName, &skName,
	)
	if err != nil {
		return QueueItem{}, fmt.Errorf("scan queue item: %w", err)
	}
	item.ValidatorName = validatorDisplayName(staffName, skName, item.ValidatedBy)
	return item, nil
}

// validatorDisplayName resolves the display name in priority order:
// staff name, SK-official name, raw validator identifier, nil.
func validatorDisplayName(staff, sk sql.NullString, raw *string) *string {
	switch {
	case staff.Valid && staff.String != "":
		return &staff.String
	case sk.Valid && sk.String != "":
		return &sk.String
	default:
		return raw
	}
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	ex := s.execer(ctx)
	stats := &Stats{}

	const counts = `
		SELECT
			(SELECT COUNT(*) FROM survey_responses),
			(SELECT COUNT(*) FROM validation_queue q
			   JOIN survey_responses r ON r.id = q.response_id
			  WHERE r.status = 'pending'),
			(SELECT COUNT(*) FROM survey_responses
			  WHERE status = 'validated' AND validated_at >= date_trunc('day', now())),
			(SELECT COUNT(*) FROM survey_responses WHERE status = 'rejected')
	`
	err := ex.QueryRowContext(ctx, counts).
		Scan(&stats.Total, &stats.Pending, &stats.Completed, &stats.Rejected)
	if err != nil {
		return nil, fmt.Errorf("queue stats counts: %w", err)
	}

	const byBarangay = `
		SELECT p.barangay, COUNT(*)
		FROM validation_queue q
		JOIN youth_profiles p ON p.id = q.youth_id
		GROUP BY p.barangay
		ORDER BY COUNT(*) DESC, p.barangay
	`
	rows, err := ex.QueryContext(ctx, byBarangay)
	if err != nil {
		return nil, fmt.Errorf("queue stats by barangay: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bc BarangayCount
		if err := rows.Scan(&bc.Barangay, &bc.Count); err != nil {
			return nil, fmt.Errorf("scan barangay count: %w", err)
		}
		stats.ByBarangay = append(stats.ByBarangay, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate barangay counts: %w", err)
	}

	recent, err := s.queryItems(ctx, dequeuedRecentSelect, nil)
	if err != nil {
		return nil, err
	}
	stats.RecentValidations = recent

	return stats, nil
}

// Recently validated responses for the dashboard. Validated responses are
// terminally adjudicated so their queue entries are gone; queue fields read
// as NULL.
const dequeuedRecentSelect = `
	SELECT NULL::uuid, r.id, r.youth_id, r.batch_id,
	       p.first_name, p.last_name, p.age, p.barangay,
	       r.status, NULL::text, NULL::int,
	       r.validated_by, r.validated_at, r.created_at,
	       staff.display_name, sk.display_name
	FROM survey_responses r
	JOIN youth_profiles p ON p.id = r.youth_id
	LEFT JOIN validator_accounts staff
	       ON staff.source_kind = 'staff' AND staff.source_id = r.validated_by
	LEFT JOIN validator_accounts sk
	       ON sk.source_kind = 'sk_official' AND sk.source_id = r.validated_by
	WHERE r.status = 'validated'
	ORDER BY r.validated_at DESC
	LIMIT 5
`

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

var _ Store = (*PostgresStore)(nil)
