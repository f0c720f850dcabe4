package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore is a Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a report store on an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const reportColumns = `id, reporter_id, influencer_user_id, reason, details, status, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, r *Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, reporter_id, influencer_user_id, reason, details,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.ReporterID, r.InfluencerUserID, r.Reason, r.Details,
		r.Status, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	return scanReport(row)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status) (*Report, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE reports SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+reportColumns,
		id, status, time.Now().UTC())
	return scanReport(row)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]*Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reportColumns+` FROM reports
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountOpenAgainst(ctx context.Context, influencerUserID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reports
		WHERE influencer_user_id = $1 AND status IN ('OPEN', 'UNDER_REVIEW')`,
		influencerUserID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open reports: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var r Report
	var status string
	err := row.Scan(&r.ID, &r.ReporterID, &r.InfluencerUserID, &r.Reason,
		&r.Details, &status, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	r.Status = Status(status)
	return &r, nil
}
