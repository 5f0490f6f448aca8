// internal/games/spectrum/errors.go

package spectrum

import "github.com/imadgeboyega/kiekky-couples/internal/common/apperr"

var (
	ErrInvalidPosition = apperr.Invalid("invalid_position", "Slider position must be between 0 and 100")
	ErrWrongQuestion   = apperr.Invalid("wrong_question_index", "That question is not the current one")
	ErrAlreadyAnswered = apperr.New(apperr.KindConflict, "already_answered", "You already answered this question")
	ErrNotPlaying      = apperr.New(apperr.KindPreconditionFailed, "not_playing", "The game is not in progress")
	ErrRoundClosed     = apperr.New(apperr.KindPreconditionFailed, "round_closed", "This round is no longer accepting answers")
	ErrRoundExpired    = apperr.New(apperr.KindPreconditionFailed, "round_expired", "Time ran out for this question")
	ErrNoActiveSession = apperr.New(apperr.KindNotFound, "no_active_session", "No active Intimacy Spectrum game")
	ErrSessionClosed   = apperr.New(apperr.KindPreconditionFailed, "session_closed", "This game has ended")

	ErrVoiceNotesNotAllowed = apperr.New(apperr.KindPreconditionFailed, "voice_notes_not_allowed", "Voice notes open once the game is completed")
	ErrVoiceNoteTooLong     = apperr.Invalid("voice_note_too_long", "Voice notes can be at most 60 seconds")
	ErrVoiceNoteLimit       = apperr.New(apperr.KindPreconditionFailed, "voice_note_limit_reached", "This game already has 10 voice notes")
	ErrVoiceNoteNotFound    = apperr.New(apperr.KindNotFound, "voice_note_not_found", "Voice note not found")
	ErrNotReceiver          = apperr.New(apperr.KindForbidden, "not_receiver", "Only the receiver can mark a voice note as listened")
	ErrNotRetryable         = apperr.New(apperr.KindPreconditionFailed, "transcription_not_retryable", "This transcription cannot be retried")
	ErrTranscriptionFailed  = apperr.New(apperr.KindUpstream, "transcription_failed", "Transcription failed")
)
