// internal/games/dreamboard/handlers.go

package dreamboard

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

// GetGame handles GET /games/dream-board/{sessionId}
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

// SubmitBoard handles POST /games/dream-board/{sessionId}/board
func (h *Handler) SubmitBoard(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	var req BoardRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	view, err := h.service.SubmitBoard(r.Context(), sessionID, userID, req.Board)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, view)
}

// SubmitReactions handles POST /games/dream-board/{sessionId}/reactions
func (h *Handler) SubmitReactions(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	var req ReactionsRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	view, err := h.service.SubmitReactions(r.Context(), sessionID, userID, req.Reactions)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, view)
}
