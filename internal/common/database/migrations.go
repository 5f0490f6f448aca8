// internal/common/database/migrations.go
// Schema for the couples engine. Statements are idempotent and run on every boot.

package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ActiveSessionIndex is the partial unique index allowing one live session per pair and game type
const ActiveSessionIndex = "game_sessions_one_active_per_pair"

var migrations = []string{
	// Users are owned by the profile service; only the columns read here are declared
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		display_name VARCHAR(100) NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		email VARCHAR(255),
		phone VARCHAR(20),
		push_token TEXT NOT NULL DEFAULT '',
		city VARCHAR(100) NOT NULL DEFAULT '',
		area VARCHAR(100) NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		is_premium BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_coordinates ON users(latitude, longitude) WHERE latitude IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS user_blocks (
		blocker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		blocked_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (blocker_id, blocked_id)
	)`,

	// Directional match records; a mutual pair is two mirror rows with status mutual_like
	`CREATE TABLE IF NOT EXISTS match_records (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		other_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		initial_message_sent BOOLEAN NOT NULL DEFAULT FALSE,
		starters_used BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (owner_id, other_id),
		CHECK (status IN ('pending', 'revealed', 'liked', 'mutual_like', 'passed'))
	)`,

	// Psychometric questionnaire
	`CREATE TABLE IF NOT EXISTS psych_questions (
		id BIGSERIAL PRIMARY KEY,
		dimension VARCHAR(40) NOT NULL,
		prompt TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS psych_answers (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		question_id BIGINT NOT NULL,
		answer TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS psychometric_analyses (
		user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		document JSONB NOT NULL,
		questions_analyzed INT NOT NULL DEFAULT 0,
		needs_reanalysis BOOLEAN NOT NULL DEFAULT FALSE,
		last_analyzed_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Game sessions for all six game types
	`CREATE TABLE IF NOT EXISTS game_sessions (
		id UUID PRIMARY KEY,
		game_type VARCHAR(40) NOT NULL,
		user_low BIGINT NOT NULL,
		user_high BIGINT NOT NULL,
		initiator_id BIGINT NOT NULL,
		invitee_id BIGINT NOT NULL,
		status VARCHAR(30) NOT NULL,
		invited_at TIMESTAMPTZ NOT NULL,
		invitation_expires_at TIMESTAMPTZ NOT NULL,
		accepted_at TIMESTAMPTZ,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		cancelled_at TIMESTAMPTZ,
		cancelled_by BIGINT,
		restart_requested_by BIGINT,
		restart_requested_at TIMESTAMPTZ,
		previous_game_id UUID,
		restart_count INT NOT NULL DEFAULT 0,
		payload JSONB NOT NULL DEFAULT '{}'::jsonb,
		result JSONB,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_sessions_initiator_status ON game_sessions(initiator_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_game_sessions_invitee_status ON game_sessions(invitee_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_game_sessions_pair_type ON game_sessions(user_low, user_high, game_type, completed_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_game_sessions_pending_expiry ON game_sessions(invitation_expires_at) WHERE status = 'pending_acceptance'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + ActiveSessionIndex + ` ON game_sessions(user_low, user_high, game_type)
		WHERE status IN ('pending_acceptance', 'accepted', 'authoring', 'answering', 'starting', 'playing', 'paused')`,

	`CREATE TABLE IF NOT EXISTS voice_notes (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
		sender_id BIGINT NOT NULL,
		receiver_id BIGINT NOT NULL,
		question_index INT NOT NULL,
		object_key TEXT NOT NULL,
		mime_type VARCHAR(50) NOT NULL,
		size_bytes BIGINT NOT NULL,
		duration_seconds DOUBLE PRECISION NOT NULL,
		transcript TEXT NOT NULL DEFAULT '',
		transcription_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		transcription_retryable BOOLEAN NOT NULL DEFAULT FALSE,
		listened_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_voice_notes_session ON voice_notes(session_id, created_at)`,

	// Derived per-couple documents keyed by canonical pair
	`CREATE TABLE IF NOT EXISTS couple_compatibility (
		user_low BIGINT NOT NULL,
		user_high BIGINT NOT NULL,
		document JSONB NOT NULL,
		total_games_included INT NOT NULL DEFAULT 0,
		last_generated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_low, user_high)
	)`,
	`CREATE TABLE IF NOT EXISTS date_decisions (
		user_low BIGINT NOT NULL,
		user_high BIGINT NOT NULL,
		document JSONB NOT NULL,
		games_count INT NOT NULL DEFAULT 0,
		generated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_low, user_high)
	)`,
	`CREATE TABLE IF NOT EXISTS date_decision_feedback (
		id BIGSERIAL PRIMARY KEY,
		user_low BIGINT NOT NULL,
		user_high BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		decision VARCHAR(20) NOT NULL,
		helpful BOOLEAN NOT NULL,
		went_on_date BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// RunMigrations executes every schema statement in order
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
