package collab

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore is a Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a collaboration store on an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const collabColumns = `id, requester_id, influencer_id, title, description, collab_type,
	proposed_terms, start_date, end_date, status, proof_urls, proof_submitted_at,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *Collaboration) error {
	terms, err := marshalTerms(c.ProposedTerms)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collaborations (id, requester_id, influencer_id, title, description,
			collab_type, proposed_terms, start_date, end_date, status, proof_urls,
			proof_submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ID, c.RequesterID, c.InfluencerID, c.Title, c.Description, c.CollabType,
		terms, c.StartDate, c.EndDate, c.Status, pq.Array(c.ProofURLs),
		c.ProofSubmittedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert collaboration: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Collaboration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+collabColumns+` FROM collaborations WHERE id = $1`, id)
	return scanCollab(row)
}

func (s *PostgresStore) Update(ctx context.Context, c *Collaboration) error {
	terms, err := marshalTerms(c.ProposedTerms)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE collaborations
		SET title = $2, description = $3, collab_type = $4, proposed_terms = $5,
			start_date = $6, end_date = $7, proof_urls = $8, proof_submitted_at = $9,
			updated_at = $10
		WHERE id = $1`,
		c.ID, c.Title, c.Description, c.CollabType, terms, c.StartDate, c.EndDate,
		pq.Array(c.ProofURLs), c.ProofSubmittedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update collaboration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, from, to Status) (*Collaboration, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE collaborations
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING `+collabColumns,
		id, from, to, time.Now().UTC())

	c, err := scanCollab(row)
	if err == ErrNotFound {
		// Distinguish a vanished row from a lost race on status.
		var exists bool
		if qerr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM collaborations WHERE id = $1)`, id).Scan(&exists); qerr != nil {
			return nil, fmt.Errorf("check collaboration exists: %w", qerr)
		}
		if exists {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) List(ctx context.Context, f ListFilter) ([]*Collaboration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+collabColumns+` FROM collaborations
		WHERE ($1 = '' OR requester_id = $1 OR influencer_id = $1)
			AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC`,
		f.UserID, string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("list collaborations: %w", err)
	}
	defer rows.Close()
	return scanCollabs(rows)
}

func (s *PostgresStore) ListByInfluencer(ctx context.Context, influencerID string) ([]*Collaboration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+collabColumns+` FROM collaborations
		WHERE influencer_id = $1
		ORDER BY created_at DESC`,
		influencerID)
	if err != nil {
		return nil, fmt.Errorf("list collaborations by influencer: %w", err)
	}
	defer rows.Close()
	return scanCollabs(rows)
}

func marshalTerms(terms map[string]any) ([]byte, error) {
	if terms == nil {
		return nil, nil
	}
	b, err := json.Marshal(terms)
	if err != nil {
		return nil, fmt.Errorf("marshal proposed terms: %w", err)
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollab(row rowScanner) (*Collaboration, error) {
	var c Collaboration
	var terms []byte
	var status string
	err := row.Scan(&c.ID, &c.RequesterID, &c.InfluencerID, &c.Title, &c.Description,
		&c.CollabType, &terms, &c.StartDate, &c.EndDate, &status,
		pq.Array(&c.ProofURLs), &c.ProofSubmittedAt, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan collaboration: %w", err)
	}
	c.Status = Status(status)
	if len(terms) > 0 {
		if err := json.Unmarshal(terms, &c.ProposedTerms); err != nil {
			return nil, fmt.Errorf("unmarshal proposed terms: %w", err)
		}
	}
	return &c, nil
}

func scanCollabs(rows *sql.Rows) ([]*Collaboration, error) {
	var out []*Collaboration
	for rows.Next() {
		c, err := scanCollab(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collaborations: %w", err)
	}
	return out, nil
}
