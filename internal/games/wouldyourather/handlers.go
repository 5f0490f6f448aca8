// internal/games/wouldyourather/handlers.go

package wouldyourather

import (
	"context"
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

// GetGame handles GET /games/would-you-rather/{sessionId}
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

// SubmitChoices handles POST /games/would-you-rather/{sessionId}/choices
func (h *Handler) SubmitChoices(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.service.SubmitChoices)
}

// SubmitPredictions handles POST /games/would-you-rather/{sessionId}/predictions
func (h *Handler) SubmitPredictions(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.service.SubmitPredictions)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID string, userID int64, answers map[string]string) (*View, error)) {
	userID, sessionID, ok := games.SessionRequest(w, r)
	if !ok {
		return
	}
	var req AnswersRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	view, err := op(r.Context(), sessionID, userID, req.Answers)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, view)
}
