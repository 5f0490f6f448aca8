// internal/games/spectrum/voicenotes_repository.go

package spectrum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// VoiceNoteRepository persists post-game voice note metadata. Audio lives in the object store.
type VoiceNoteRepository interface {
	Create(ctx context.Context, n *VoiceNote) error
	Get(ctx context.Context, id string) (*VoiceNote, error)
	ListForSession(ctx context.Context, sessionID string) ([]*VoiceNote, error)
	UpdateTranscription(ctx context.Context, id, transcript string, status TranscriptionStatus, retryable bool) error
	MarkListened(ctx context.Context, id string, at time.Time) error
}

type postgresVoiceNotes struct {
	db *sqlx.DB
}

func NewPostgresVoiceNoteRepository(db *sqlx.DB) VoiceNoteRepository {
	return &postgresVoiceNotes{db: db}
}

const voiceNoteColumns = `id, session_id, sender_id, receiver_id, question_index, object_key, mime_type,
	size_bytes, duration_seconds, transcript, transcription_status, transcription_retryable, listened_at, created_at`

func (r *postgresVoiceNotes) Create(ctx context.Context, n *VoiceNote) error {
	query := `
		INSERT INTO voice_notes (` + voiceNoteColumns + `)
		VALUES (:id, :session_id, :sender_id, :receiver_id, :question_index, :object_key, :mime_type,
			:size_bytes, :duration_seconds, :transcript, :transcription_status, :transcription_retryable, :listened_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create voice note: %w", err)
	}
	return nil
}

func (r *postgresVoiceNotes) Get(ctx context.Context, id string) (*VoiceNote, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrVoiceNoteNotFound
	}
	var n VoiceNote
	err := r.db.GetContext(ctx, &n, `SELECT `+voiceNoteColumns+` FROM voice_notes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVoiceNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get voice note: %w", err)
	}
	return &n, nil
}

func (r *postgresVoiceNotes) ListForSession(ctx context.Context, sessionID string) ([]*VoiceNote, error) {
	var notes []*VoiceNote
	err := r.db.SelectContext(ctx, &notes,
		`SELECT `+voiceNoteColumns+` FROM voice_notes WHERE session_id = $1 ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list voice notes: %w", err)
	}
	return notes, nil
}

func (r *postgresVoiceNotes) UpdateTranscription(ctx context.Context, id, transcript string, status TranscriptionStatus, retryable bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE voice_notes
		SET transcript = $2, transcription_status = $3, transcription_retryable = $4
		WHERE id = $1`, id, transcript, string(status), retryable)
	if err != nil {
		return fmt.Errorf("update transcription: %w", err)
	}
	return nil
}

func (r *postgresVoiceNotes) MarkListened(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE voice_notes SET listened_at = $2 WHERE id = $1 AND listened_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("mark listened: %w", err)
	}
	return nil
}
