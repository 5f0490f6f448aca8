// internal/games/repository.go

package games

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/database"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

// Repository persists game sessions of every type
type Repository interface {
	// Create inserts a new session; ErrActiveGameExists if the pair already has a live one of that type
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// Update loads the session under a row lock, applies fn and writes it back.
	// Nothing is written when fn returns an error.
	Update(ctx context.Context, id string, fn func(s *Session) error) (*Session, error)
	// LatestCompleted returns the most recent finished session per game type for a pair
	LatestCompleted(ctx context.Context, pair matches.Pair) (map[GameType]*Session, error)
	CountForPair(ctx context.Context, pair matches.Pair) (int, error)
	// ExpirePending moves pending invitations past their deadline to expired and returns them
	ExpirePending(ctx context.Context, now time.Time) ([]*Session, error)
	ListByStatuses(ctx context.Context, gameType GameType, statuses []Status) ([]*Session, error)
	ListForUser(ctx context.Context, userID int64, gameType GameType, limit int) ([]*Session, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const sessionColumns = `id, game_type, user_low, user_high, initiator_id, invitee_id, status,
	invited_at, invitation_expires_at, accepted_at, started_at, completed_at, cancelled_at, cancelled_by,
	restart_requested_by, restart_requested_at, previous_game_id, restart_count, payload, result, updated_at`

type sessionRow struct {
	ID                  string             `db:"id"`
	GameType            string             `db:"game_type"`
	UserLow             int64              `db:"user_low"`
	UserHigh            int64              `db:"user_high"`
	InitiatorID         int64              `db:"initiator_id"`
	InviteeID           int64              `db:"invitee_id"`
	Status              string             `db:"status"`
	InvitedAt           time.Time          `db:"invited_at"`
	InvitationExpiresAt time.Time          `db:"invitation_expires_at"`
	AcceptedAt          *time.Time         `db:"accepted_at"`
	StartedAt           *time.Time         `db:"started_at"`
	CompletedAt         *time.Time         `db:"completed_at"`
	CancelledAt         *time.Time         `db:"cancelled_at"`
	CancelledBy         *int64             `db:"cancelled_by"`
	RestartRequestedBy  *int64             `db:"restart_requested_by"`
	RestartRequestedAt  *time.Time         `db:"restart_requested_at"`
	PreviousGameID      *string            `db:"previous_game_id"`
	RestartCount        int                `db:"restart_count"`
	Payload             types.JSONText     `db:"payload"`
	Result              types.NullJSONText `db:"result"`
	UpdatedAt           time.Time          `db:"updated_at"`
}

func (row *sessionRow) toSession() (*Session, error) {
	s := &Session{
		ID:                  row.ID,
		GameType:            GameType(row.GameType),
		Pair:                matches.Pair{Low: row.UserLow, High: row.UserHigh},
		InitiatorID:         row.InitiatorID,
		InviteeID:           row.InviteeID,
		Status:              Status(row.Status),
		InvitedAt:           row.InvitedAt,
		InvitationExpiresAt: row.InvitationExpiresAt,
		AcceptedAt:          row.AcceptedAt,
		StartedAt:           row.StartedAt,
		CompletedAt:         row.CompletedAt,
		CancelledAt:         row.CancelledAt,
		CancelledBy:         row.CancelledBy,
		RestartRequestedBy:  row.RestartRequestedBy,
		RestartRequestedAt:  row.RestartRequestedAt,
		PreviousGameID:      row.PreviousGameID,
		RestartCount:        row.RestartCount,
		Payload:             json.RawMessage(row.Payload),
		UpdatedAt:           row.UpdatedAt,
	}
	if row.Result.Valid && len(row.Result.JSONText) > 0 {
		var view ResultView
		if err := json.Unmarshal(row.Result.JSONText, &view); err != nil {
			return nil, fmt.Errorf("decode result of %s: %w", row.ID, err)
		}
		s.Result = &view
	}
	return s, nil
}

func rowFromSession(s *Session) (*sessionRow, error) {
	row := &sessionRow{
		ID:                  s.ID,
		GameType:            string(s.GameType),
		UserLow:             s.Pair.Low,
		UserHigh:            s.Pair.High,
		InitiatorID:         s.InitiatorID,
		InviteeID:           s.InviteeID,
		Status:              string(s.Status),
		InvitedAt:           s.InvitedAt,
		InvitationExpiresAt: s.InvitationExpiresAt,
		AcceptedAt:          s.AcceptedAt,
		StartedAt:           s.StartedAt,
		CompletedAt:         s.CompletedAt,
		CancelledAt:         s.CancelledAt,
		CancelledBy:         s.CancelledBy,
		RestartRequestedBy:  s.RestartRequestedBy,
		RestartRequestedAt:  s.RestartRequestedAt,
		PreviousGameID:      s.PreviousGameID,
		RestartCount:        s.RestartCount,
		Payload:             types.JSONText(s.Payload),
		UpdatedAt:           s.UpdatedAt,
	}
	if len(row.Payload) == 0 {
		row.Payload = types.JSONText("{}")
	}
	if s.Result != nil {
		data, err := json.Marshal(s.Result)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		row.Result = types.NullJSONText{JSONText: data, Valid: true}
	}
	return row, nil
}

func scanSessions(rows []sessionRow) ([]*Session, error) {
	out := make([]*Session, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toSession()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *postgresRepository) Create(ctx context.Context, s *Session) error {
	row, err := rowFromSession(s)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO game_sessions (` + sessionColumns + `)
		VALUES (:id, :game_type, :user_low, :user_high, :initiator_id, :invitee_id, :status,
			:invited_at, :invitation_expires_at, :accepted_at, :started_at, :completed_at, :cancelled_at, :cancelled_by,
			:restart_requested_by, :restart_requested_at, :previous_game_id, :restart_count, :payload, :result, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if database.IsUniqueViolation(err, database.ActiveSessionIndex) {
			return ErrActiveGameExists
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *postgresRepository) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.ErrSessionNotFound
	}
	var row sessionRow
	err := r.db.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return row.toSession()
}

func (r *postgresRepository) Update(ctx context.Context, id string, fn func(s *Session) error) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.ErrSessionNotFound
	}

	var updated *Session
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var row sessionRow
		err := tx.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		s, err := row.toSession()
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		s.UpdatedAt = time.Now().UTC()

		out, err := rowFromSession(s)
		if err != nil {
			return err
		}
		query := `
			UPDATE game_sessions SET
				status = :status,
				accepted_at = :accepted_at,
				started_at = :started_at,
				completed_at = :completed_at,
				cancelled_at = :cancelled_at,
				cancelled_by = :cancelled_by,
				restart_requested_by = :restart_requested_by,
				restart_requested_at = :restart_requested_at,
				payload = :payload,
				result = :result,
				updated_at = :updated_at
			WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, out); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepository) LatestCompleted(ctx context.Context, pair matches.Pair) (map[GameType]*Session, error) {
	var rows []sessionRow
	query := `
		SELECT DISTINCT ON (game_type) ` + sessionColumns + `
		FROM game_sessions
		WHERE user_low = $1 AND user_high = $2
			AND status IN ('completed', 'discussion')
			AND result IS NOT NULL
		ORDER BY game_type, completed_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, pair.Low, pair.High); err != nil {
		return nil, fmt.Errorf("latest completed: %w", err)
	}
	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[GameType]*Session, len(sessions))
	for _, s := range sessions {
		out[s.GameType] = s
	}
	return out, nil
}

func (r *postgresRepository) CountForPair(ctx context.Context, pair matches.Pair) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM game_sessions WHERE user_low = $1 AND user_high = $2`, pair.Low, pair.High)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) ExpirePending(ctx context.Context, now time.Time) ([]*Session, error) {
	var rows []sessionRow
	query := `
		UPDATE game_sessions
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'pending_acceptance' AND invitation_expires_at < $1
		RETURNING ` + sessionColumns
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("expire pending: %w", err)
	}
	return scanSessions(rows)
}

func (r *postgresRepository) ListByStatuses(ctx context.Context, gameType GameType, statuses []Status) ([]*Session, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	var rows []sessionRow
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE game_type = $1 AND status = ANY($2)`
	if err := r.db.SelectContext(ctx, &rows, query, string(gameType), pq.Array(names)); err != nil {
		return nil, fmt.Errorf("list sessions by status: %w", err)
	}
	return scanSessions(rows)
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID int64, gameType GameType, limit int) ([]*Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []sessionRow
	query := `
		SELECT ` + sessionColumns + `
		FROM game_sessions
		WHERE (initiator_id = $1 OR invitee_id = $1) AND game_type = $2
		ORDER BY invited_at DESC
		LIMIT $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, string(gameType), limit); err != nil {
		return nil, fmt.Errorf("list sessions for user: %w", err)
	}
	return scanSessions(rows)
}
