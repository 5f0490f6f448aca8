// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
)

// Repository reads users and block relations
type Repository interface {
	GetUser(ctx context.Context, userID int64) (*User, error)
	GetUsers(ctx context.Context, userIDs []int64) (map[int64]*User, error)
	// IsBlockedEitherWay reports whether a blocked b or b blocked a
	IsBlockedEitherWay(ctx context.Context, a, b int64) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, display_name, photo_url, email, phone, push_token, city, area,
	latitude, longitude, is_premium, created_at`

func (r *postgresRepository) GetUser(ctx context.Context, userID int64) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &u, nil
}

func (r *postgresRepository) GetUsers(ctx context.Context, userIDs []int64) (map[int64]*User, error) {
	var users []*User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	out := make(map[int64]*User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *postgresRepository) IsBlockedEitherWay(ctx context.Context, a, b int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
		SELECT 1 FROM user_blocks
		WHERE (blocker_id = $1 AND blocked_id = $2) OR (blocker_id = $2 AND blocked_id = $1)
	)`
	if err := r.db.GetContext(ctx, &exists, query, a, b); err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return exists, nil
}
