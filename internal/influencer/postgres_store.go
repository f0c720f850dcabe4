package influencer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostgresStore is a Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a profile store on an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `id, user_id, niche, platforms, followers_count, engagement_rate,
	collaboration_types, availability, avg_rating, total_reviews, ranking_score,
	ranking_tier, verified, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *Profile) error {
	platforms, err := json.Marshal(p.Platforms)
	if err != nil {
		return fmt.Errorf("marshal platforms: %w", err)
	}
	types, err := json.Marshal(p.CollaborationTypes)
	if err != nil {
		return fmt.Errorf("marshal collaboration types: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO influencer_profiles (id, user_id, niche, platforms, followers_count,
			engagement_rate, collaboration_types, availability, avg_rating, total_reviews,
			ranking_score, ranking_tier, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.UserID, p.Niche, platforms, p.FollowersCount, p.EngagementRate,
		types, p.Availability, p.AvgRating, p.TotalReviews, p.RankingScore,
		p.RankingTier, p.Verified, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByUserID(ctx context.Context, userID string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM influencer_profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM influencer_profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (s *PostgresStore) Update(ctx context.Context, p *Profile) error {
	platforms, err := json.Marshal(p.Platforms)
	if err != nil {
		return fmt.Errorf("marshal platforms: %w", err)
	}
	types, err := json.Marshal(p.CollaborationTypes)
	if err != nil {
		return fmt.Errorf("marshal collaboration types: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE influencer_profiles
		SET niche = $2, platforms = $3, followers_count = $4, engagement_rate = $5,
			collaboration_types = $6, availability = $7, updated_at = $8
		WHERE user_id = $1`,
		p.UserID, p.Niche, platforms, p.FollowersCount, p.EngagementRate,
		types, p.Availability, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdateRanking(ctx context.Context, userID string, score float64, tier string, avgRating float64, totalReviews int) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE influencer_profiles
		SET ranking_score = $2, ranking_tier = $3, avg_rating = $4, total_reviews = $5,
			updated_at = $6
		WHERE user_id = $1
		RETURNING `+profileColumns,
		userID, score, tier, avgRating, totalReviews, time.Now().UTC())
	return scanProfile(row)
}

func (s *PostgresStore) UpdateRatingStats(ctx context.Context, userID string, avgRating float64, totalReviews int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE influencer_profiles
		SET avg_rating = $2, total_reviews = $3, updated_at = $4
		WHERE user_id = $1`,
		userID, avgRating, totalReviews, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update rating stats: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetVerified(ctx context.Context, userID string, verified bool) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE influencer_profiles
		SET verified = $2, updated_at = $3
		WHERE user_id = $1
		RETURNING `+profileColumns,
		userID, verified, time.Now().UTC())
	return scanProfile(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM influencer_profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (s *PostgresStore) Search(ctx context.Context, q SearchQuery) ([]*Profile, int, error) {
	where := `WHERE ($1 = '' OR LOWER(niche) = LOWER($1))
		AND ($2 = 0 OR followers_count >= $2)
		AND ($3 = '' OR platforms @> jsonb_build_array(jsonb_build_object('kind', LOWER($3))))`

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM influencer_profiles `+where,
		q.Niche, q.MinFollowers, q.Platform).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM influencer_profiles `+where+`
		ORDER BY ranking_score DESC, created_at
		LIMIT $4 OFFSET $5`,
		q.Niche, q.MinFollowers, q.Platform, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("search profiles: %w", err)
	}
	defer rows.Close()

	items, err := scanProfiles(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	var platforms, types []byte
	err := row.Scan(&p.ID, &p.UserID, &p.Niche, &platforms, &p.FollowersCount,
		&p.EngagementRate, &types, &p.Availability, &p.AvgRating, &p.TotalReviews,
		&p.RankingScore, &p.RankingTier, &p.Verified, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	if len(platforms) > 0 {
		if err := json.Unmarshal(platforms, &p.Platforms); err != nil {
			return nil, fmt.Errorf("unmarshal platforms: %w", err)
		}
	}
	if len(types) > 0 {
		if err := json.Unmarshal(types, &p.CollaborationTypes); err != nil {
			return nil, fmt.Errorf("unmarshal collaboration types: %w", err)
		}
	}
	return &p, nil
}

func scanProfiles(rows *sql.Rows) ([]*Profile, error) {
	var out []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}
