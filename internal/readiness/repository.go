// internal/readiness/repository.go

package readiness

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

// Repository stores the latest decision per canonical pair plus user feedback
type Repository interface {
	Get(ctx context.Context, pair matches.Pair) (*Result, error)
	Save(ctx context.Context, res *Result) error
	SaveFeedback(ctx context.Context, fb *Feedback) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Get(ctx context.Context, pair matches.Pair) (*Result, error) {
	var doc types.JSONText
	err := r.db.GetContext(ctx, &doc,
		`SELECT document FROM date_decisions WHERE user_low = $1 AND user_high = $2`, pair.Low, pair.High)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDecisionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	var res Result
	if err := json.Unmarshal(doc, &res); err != nil {
		return nil, fmt.Errorf("decode decision: %w", err)
	}
	res.Pair = pair
	return &res, nil
}

func (r *postgresRepository) Save(ctx context.Context, res *Result) error {
	doc, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	query := `
		INSERT INTO date_decisions (user_low, user_high, document, games_count, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_low, user_high) DO UPDATE SET
			document = EXCLUDED.document,
			games_count = EXCLUDED.games_count,
			generated_at = EXCLUDED.generated_at`
	_, err = r.db.ExecContext(ctx, query, res.Pair.Low, res.Pair.High, types.JSONText(doc), res.GamesCount, res.GeneratedAt)
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	return nil
}

func (r *postgresRepository) SaveFeedback(ctx context.Context, fb *Feedback) error {
	query := `
		INSERT INTO date_decision_feedback (user_low, user_high, user_id, decision, helpful, went_on_date, notes)
		VALUES (:user_low, :user_high, :user_id, :decision, :helpful, :went_on_date, :notes)
		RETURNING id, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, fb)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&fb.ID, &fb.CreatedAt); err != nil {
			return fmt.Errorf("save feedback: %w", err)
		}
	}
	return rows.Err()
}
