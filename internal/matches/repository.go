// internal/matches/repository.go

package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/database"
)

// Repository reads and updates directional match records
type Repository interface {
	GetRecord(ctx context.Context, id int64) (*Record, error)
	GetPairRecords(ctx context.Context, pair Pair) ([]*Record, error)
	MarkMessageSent(ctx context.Context, ownerID, otherID int64) error
	// MarkStartersUsed updates both mirror records in one transaction
	MarkStartersUsed(ctx context.Context, pair Pair) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetRecord(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	err := r.db.GetContext(ctx, &rec, `SELECT * FROM match_records WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	return &rec, nil
}

func (r *postgresRepository) GetPairRecords(ctx context.Context, pair Pair) ([]*Record, error) {
	var recs []*Record
	query := `
		SELECT * FROM match_records
		WHERE (owner_id = $1 AND other_id = $2) OR (owner_id = $2 AND other_id = $1)
		ORDER BY owner_id`
	if err := r.db.SelectContext(ctx, &recs, query, pair.Low, pair.High); err != nil {
		return nil, fmt.Errorf("get pair records: %w", err)
	}
	return recs, nil
}

func (r *postgresRepository) MarkMessageSent(ctx context.Context, ownerID, otherID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE match_records SET initial_message_sent = TRUE, updated_at = NOW()
		WHERE owner_id = $1 AND other_id = $2`, ownerID, otherID)
	if err != nil {
		return fmt.Errorf("mark message sent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrMatchNotFound
	}
	return nil
}

func (r *postgresRepository) MarkStartersUsed(ctx context.Context, pair Pair) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Lock both mirrors in id order so concurrent updates cannot interleave
		var ids []int64
		err := tx.SelectContext(ctx, &ids, `
			SELECT id FROM match_records
			WHERE (owner_id = $1 AND other_id = $2) OR (owner_id = $2 AND other_id = $1)
			ORDER BY id FOR UPDATE`, pair.Low, pair.High)
		if err != nil {
			return fmt.Errorf("lock pair records: %w", err)
		}
		if len(ids) == 0 {
			return apperr.ErrMatchNotFound
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE match_records SET starters_used = TRUE, updated_at = NOW()
			WHERE (owner_id = $1 AND other_id = $2) OR (owner_id = $2 AND other_id = $1)`, pair.Low, pair.High)
		return err
	})
}
