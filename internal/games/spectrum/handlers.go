// internal/games/spectrum/handlers.go

package spectrum

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-couples/internal/auth"
	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
)

// multipart overhead on top of the audio limit
const uploadSlack = 1 << 20

var errBadUpload = apperr.Invalid("invalid_upload", "Expected multipart form with audio, question_index and duration_seconds")

type Handler struct {
	coord  *Coordinator
	voices *VoiceNoteService
}

func NewHandler(coord *Coordinator, voices *VoiceNoteService) *Handler {
	return &Handler{coord: coord, voices: voices}
}

// Questions handles GET /games/spectrum/questions
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithData(w, http.StatusOK, h.coord.Questions())
}

// State handles GET /games/spectrum/{sessionId}
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	view, err := h.coord.State(r.Context(), sessionID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, view)
}

// Results handles GET /games/spectrum/{sessionId}/results
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	view, err := h.coord.Results(r.Context(), sessionID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, view)
}

// Quit handles POST /games/spectrum/{sessionId}/quit
func (h *Handler) Quit(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	if err := h.coord.Quit(r.Context(), sessionID, userID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": string(games.StatusAbandoned)})
}

// UploadVoiceNote handles POST /games/spectrum/{sessionId}/voice-notes (multipart)
func (h *Handler) UploadVoiceNote(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, llm.MaxAudioBytes+uploadSlack)
	if err := r.ParseMultipartForm(llm.MaxAudioBytes + uploadSlack); err != nil {
		utils.RespondWithAppError(w, llm.ErrAudioTooLarge)
		return
	}
	questionIndex, err := strconv.Atoi(r.FormValue("question_index"))
	if err != nil {
		utils.RespondWithAppError(w, errBadUpload)
		return
	}
	duration, err := strconv.ParseFloat(r.FormValue("duration_seconds"), 64)
	if err != nil || duration <= 0 {
		utils.RespondWithAppError(w, errBadUpload)
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondWithAppError(w, errBadUpload)
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(io.LimitReader(file, llm.MaxAudioBytes+1))
	if err != nil {
		utils.RespondWithAppError(w, errBadUpload)
		return
	}

	note, err := h.voices.Upload(r.Context(), sessionID, userID, VoiceNoteUpload{
		QuestionIndex:   questionIndex,
		MimeType:        header.Header.Get("Content-Type"),
		DurationSeconds: duration,
		Audio:           audio,
	})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, note)
}

// ListVoiceNotes handles GET /games/spectrum/{sessionId}/voice-notes
func (h *Handler) ListVoiceNotes(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	notes, err := h.voices.List(r.Context(), sessionID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, notes)
}

// DownloadVoiceNote handles GET /games/spectrum/voice-notes/{noteId}/audio
func (h *Handler) DownloadVoiceNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	body, contentType, err := h.voices.Download(r.Context(), mux.Vars(r)["noteId"], userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

// MarkListened handles POST /games/spectrum/voice-notes/{noteId}/listened
func (h *Handler) MarkListened(w http.ResponseWriter, r *http.Request) {
	h.noteAction(w, r, h.voices.MarkListened)
}

// RetryTranscription handles POST /games/spectrum/voice-notes/{noteId}/transcribe
func (h *Handler) RetryTranscription(w http.ResponseWriter, r *http.Request) {
	h.noteAction(w, r, h.voices.RetryTranscription)
}

func (h *Handler) noteAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, noteID string, userID int64) (*VoiceNote, error)) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	note, err := fn(r.Context(), mux.Vars(r)["noteId"], userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, note)
}
