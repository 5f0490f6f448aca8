// internal/games/twotruths/handlers.go

package twotruths

import (
	"net/http"

	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetGame handles GET /games/two-truths/{sessionId}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	view, err := h.service.View(r.Context(), sessionID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, view)
}

// SubmitStatements handles POST /games/two-truths/{sessionId}/statements
func (h *Handler) SubmitStatements(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	var req SubmitStatementsRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	view, err := h.service.SubmitStatements(r.Context(), sessionID, userID, req.Rounds)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, view)
}

// SubmitGuesses handles POST /games/two-truths/{sessionId}/guesses
func (h *Handler) SubmitGuesses(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	var req SubmitGuessesRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	view, err := h.service.SubmitGuesses(r.Context(), sessionID, userID, req.Guesses)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, view)
}
