// internal/games/spectrum/voicenotes.go
// Post-game voice notes: upload, transcription and listening receipts

package spectrum

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
	"github.com/imadgeboyega/kiekky-couples/internal/storage"
)

const (
	MaxVoiceNoteSeconds  = 60
	MaxVoiceNotesPerGame = 10

	transcribeTimeout = 2 * time.Minute
)

// TranscriptionStatus of a voice note
type TranscriptionStatus string

const (
	TranscriptionPending   TranscriptionStatus = "pending"
	TranscriptionCompleted TranscriptionStatus = "completed"
	TranscriptionFailed    TranscriptionStatus = "failed"
)

var ErrInvalidQuestionIndex = apperr.Invalid("invalid_question_index", "Question index must be between 0 and 29")

// VoiceNote is one recorded reply about a question
type VoiceNote struct {
	ID                     string              `db:"id" json:"id"`
	SessionID              string              `db:"session_id" json:"session_id"`
	SenderID               int64               `db:"sender_id" json:"sender_id"`
	ReceiverID             int64               `db:"receiver_id" json:"receiver_id"`
	QuestionIndex          int                 `db:"question_index" json:"question_index"`
	ObjectKey              string              `db:"object_key" json:"-"`
	MimeType               string              `db:"mime_type" json:"mime_type"`
	SizeBytes              int64               `db:"size_bytes" json:"size_bytes"`
	DurationSeconds        float64             `db:"duration_seconds" json:"duration_seconds"`
	Transcript             string              `db:"transcript" json:"transcript,omitempty"`
	TranscriptionStatus    TranscriptionStatus `db:"transcription_status" json:"transcription_status"`
	TranscriptionRetryable bool                `db:"transcription_retryable" json:"transcription_retryable"`
	ListenedAt             *time.Time          `db:"listened_at" json:"listened_at,omitempty"`
	CreatedAt              time.Time           `db:"created_at" json:"created_at"`
}

// VoiceNoteUpload is a validated multipart upload
type VoiceNoteUpload struct {
	QuestionIndex   int
	MimeType        string
	DurationSeconds float64
	Audio           []byte
}

// VoiceNoteService handles the discussion phase after a completed game
type VoiceNoteService struct {
	games       *games.Service
	repo        VoiceNoteRepository
	store       storage.ObjectStore
	transcriber llm.Client
	questions   []Question
	clock       clock.Clock
	log         *logger.Logger

	// runs background transcription; tests run it inline
	async func(func())
}

func NewVoiceNoteService(lifecycle *games.Service, repo VoiceNoteRepository, store storage.ObjectStore, transcriber llm.Client, log *logger.Logger) (*VoiceNoteService, error) {
	questions, err := LoadQuestions()
	if err != nil {
		return nil, err
	}
	return &VoiceNoteService{
		games:       lifecycle,
		repo:        repo,
		store:       store,
		transcriber: transcriber,
		questions:   questions,
		clock:       lifecycle.Clock(),
		log:         log.With("component", "voice_notes"),
		async:       func(fn func()) { go fn() },
	}, nil
}

// Upload stores a voice note and moves the session into discussion
func (s *VoiceNoteService) Upload(ctx context.Context, sessionID string, userID int64, up VoiceNoteUpload) (*VoiceNote, error) {
	session, err := s.games.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.GameType != games.IntimacySpectrum || !session.Status.IsFinished() {
		return nil, ErrVoiceNotesNotAllowed
	}
	if up.QuestionIndex < 0 || up.QuestionIndex >= len(s.questions) {
		return nil, ErrInvalidQuestionIndex
	}
	if up.DurationSeconds > MaxVoiceNoteSeconds {
		return nil, ErrVoiceNoteTooLong
	}
	if err := llm.ValidateAudio(len(up.Audio), up.MimeType, up.DurationSeconds); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	note := &VoiceNote{
		ID:                  uuid.NewString(),
		SessionID:           session.ID,
		SenderID:            userID,
		ReceiverID:          session.Partner(userID),
		QuestionIndex:       up.QuestionIndex,
		ObjectKey:           storage.VoiceNoteKey(userID, up.QuestionIndex, now, storage.ExtensionForMime(up.MimeType)),
		MimeType:            up.MimeType,
		SizeBytes:           int64(len(up.Audio)),
		DurationSeconds:     up.DurationSeconds,
		TranscriptionStatus: TranscriptionPending,
		CreatedAt:           now,
	}

	if err := s.store.Put(ctx, note.ObjectKey, up.Audio, up.MimeType); err != nil {
		return nil, err
	}

	// the session row lock serializes the per-game limit
	var entered bool
	_, err = s.games.Repository().Update(ctx, session.ID, func(sess *games.Session) error {
		if !sess.Status.IsFinished() {
			return ErrVoiceNotesNotAllowed
		}
		var p Payload
		if err := sess.DecodePayload(&p); err != nil {
			return err
		}
		if p.VoiceNoteCount >= MaxVoiceNotesPerGame {
			return ErrVoiceNoteLimit
		}
		p.VoiceNoteCount++
		if sess.Status == games.StatusCompleted {
			sess.Status = games.StatusDiscussion
			entered = true
		}
		return sess.EncodePayload(p)
	})
	if err == nil {
		err = s.repo.Create(ctx, note)
	}
	if err != nil {
		if delErr := s.store.Delete(context.Background(), note.ObjectKey); delErr != nil {
			s.log.Warn("failed to remove orphaned voice note", "key", note.ObjectKey, "error", delErr.Error())
		}
		return nil, err
	}
	if entered {
		games.RecordTransition(games.IntimacySpectrum, games.StatusDiscussion)
	}

	s.log.Info("voice note uploaded", "session_id", session.ID, "note_id", note.ID, "question_index", note.QuestionIndex)
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
		defer cancel()
		s.transcribe(ctx, note, up.Audio)
	})
	return note, nil
}

// transcribe records the outcome on the note. Every failure is retryable.
func (s *VoiceNoteService) transcribe(ctx context.Context, note *VoiceNote, audio []byte) error {
	prompt := ""
	if note.QuestionIndex < len(s.questions) {
		prompt = s.questions[note.QuestionIndex].Prompt
	}
	out, err := s.transcriber.Transcribe(ctx, llm.TranscriptionRequest{
		Audio:           audio,
		Filename:        note.ID + storage.ExtensionForMime(note.MimeType),
		MimeType:        note.MimeType,
		DurationSeconds: note.DurationSeconds,
		Prompt:          prompt,
	})
	if err != nil {
		s.log.Warn("voice note transcription failed", "note_id", note.ID, "error", err.Error())
		note.TranscriptionStatus, note.TranscriptionRetryable = TranscriptionFailed, true
		if uErr := s.repo.UpdateTranscription(ctx, note.ID, "", TranscriptionFailed, true); uErr != nil {
			s.log.Error("failed to record transcription failure", "note_id", note.ID, "error", uErr.Error())
		}
		return ErrTranscriptionFailed.WithCause(err)
	}

	note.Transcript = out.Text
	note.TranscriptionStatus, note.TranscriptionRetryable = TranscriptionCompleted, false
	return s.repo.UpdateTranscription(ctx, note.ID, out.Text, TranscriptionCompleted, false)
}

// RetryTranscription re-runs a failed transcription synchronously
func (s *VoiceNoteService) RetryTranscription(ctx context.Context, noteID string, userID int64) (*VoiceNote, error) {
	note, err := s.authorize(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	if note.TranscriptionStatus != TranscriptionFailed || !note.TranscriptionRetryable {
		return nil, ErrNotRetryable
	}

	body, _, err := s.store.Get(ctx, note.ObjectKey)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	audio, err := io.ReadAll(body)
	if err != nil {
		return nil, storage.ErrStorageFailed.WithCause(err)
	}

	if err := s.transcribe(ctx, note, audio); err != nil {
		return nil, err
	}
	return note, nil
}

// MarkListened records that the receiver played the note
func (s *VoiceNoteService) MarkListened(ctx context.Context, noteID string, userID int64) (*VoiceNote, error) {
	note, err := s.authorize(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	if note.ReceiverID != userID {
		return nil, ErrNotReceiver
	}
	if note.ListenedAt != nil {
		return note, nil
	}
	now := s.clock.Now()
	if err := s.repo.MarkListened(ctx, note.ID, now); err != nil {
		return nil, err
	}
	note.ListenedAt = &now
	return note, nil
}

// List returns the session's notes, oldest first
func (s *VoiceNoteService) List(ctx context.Context, sessionID string, userID int64) ([]*VoiceNote, error) {
	if _, err := s.games.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListForSession(ctx, sessionID)
}

// Download streams the audio to a participant
func (s *VoiceNoteService) Download(ctx context.Context, noteID string, userID int64) (io.ReadCloser, string, error) {
	note, err := s.authorize(ctx, noteID, userID)
	if err != nil {
		return nil, "", err
	}
	body, contentType, err := s.store.Get(ctx, note.ObjectKey)
	if err != nil {
		return nil, "", err
	}
	if contentType == "" {
		contentType = note.MimeType
	}
	return body, contentType, nil
}

func (s *VoiceNoteService) authorize(ctx context.Context, noteID string, userID int64) (*VoiceNote, error) {
	note, err := s.repo.Get(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.SenderID != userID && note.ReceiverID != userID {
		return nil, apperr.ErrNotParticipant
	}
	return note, nil
}
