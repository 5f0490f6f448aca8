// internal/compatibility/repository.go

package compatibility

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

// Repository stores one aggregate document per canonical pair
type Repository interface {
	Get(ctx context.Context, pair matches.Pair) (*Aggregate, error)
	Save(ctx context.Context, agg *Aggregate) error
	Delete(ctx context.Context, pair matches.Pair) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Get(ctx context.Context, pair matches.Pair) (*Aggregate, error) {
	var doc types.JSONText
	err := r.db.GetContext(ctx, &doc,
		`SELECT document FROM couple_compatibility WHERE user_low = $1 AND user_high = $2`, pair.Low, pair.High)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAggregateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get compatibility: %w", err)
	}
	var agg Aggregate
	if err := json.Unmarshal(doc, &agg); err != nil {
		return nil, fmt.Errorf("decode compatibility: %w", err)
	}
	agg.Pair = pair
	return &agg, nil
}

func (r *postgresRepository) Save(ctx context.Context, agg *Aggregate) error {
	doc, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode compatibility: %w", err)
	}
	query := `
		INSERT INTO couple_compatibility (user_low, user_high, document, total_games_included, last_generated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_low, user_high) DO UPDATE SET
			document = EXCLUDED.document,
			total_games_included = EXCLUDED.total_games_included,
			last_generated_at = EXCLUDED.last_generated_at`
	_, err = r.db.ExecContext(ctx, query, agg.Pair.Low, agg.Pair.High, types.JSONText(doc), agg.TotalGamesIncluded, agg.LastGeneratedAt)
	if err != nil {
		return fmt.Errorf("save compatibility: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, pair matches.Pair) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM couple_compatibility WHERE user_low = $1 AND user_high = $2`, pair.Low, pair.High)
	if err != nil {
		return fmt.Errorf("delete compatibility: %w", err)
	}
	return nil
}
