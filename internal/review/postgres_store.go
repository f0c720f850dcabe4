package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore is a Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a review store on an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, collaboration_id, reviewer_id, influencer_user_id,
			rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.CollaborationID, r.ReviewerID, r.InfluencerUserID,
		r.Rating, r.Comment, r.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByCollaboration(ctx context.Context, collaborationID string) (*Review, error) {
	var r Review
	err := s.db.QueryRowContext(ctx, `
		SELECT id, collaboration_id, reviewer_id, influencer_user_id, rating, comment, created_at
		FROM reviews WHERE collaboration_id = $1`, collaborationID).
		Scan(&r.ID, &r.CollaborationID, &r.ReviewerID, &r.InfluencerUserID,
			&r.Rating, &r.Comment, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) ListByInfluencer(ctx context.Context, influencerUserID string) ([]*Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collaboration_id, reviewer_id, influencer_user_id, rating, comment, created_at
		FROM reviews WHERE influencer_user_id = $1
		ORDER BY created_at DESC`, influencerUserID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []*Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.CollaborationID, &r.ReviewerID, &r.InfluencerUserID,
			&r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) RatingStats(ctx context.Context, influencerUserID string) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(rating), COUNT(*) FROM reviews WHERE influencer_user_id = $1`,
		influencerUserID).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("rating stats: %w", err)
	}
	return avg.Float64, count, nil
}
