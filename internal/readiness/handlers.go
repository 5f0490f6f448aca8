// internal/readiness/handlers.go

package readiness

import (
	"net/http"

	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

type Handler struct {
	service *Service
	matches matches.Service
}

func NewHandler(service *Service, matchService matches.Service) *Handler {
	return &Handler{service: service, matches: matchService}
}

func (h *Handler) couple(w http.ResponseWriter, r *http.Request) (*matches.Couple, bool) {
	userID, matchID, ok := matches.RequestIDs(w, r)
	if !ok {
		return nil, false
	}
	couple, err := h.matches.ResolveCouple(r.Context(), matchID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return nil, false
	}
	return couple, true
}

// GetReadiness handles GET /matches/{matchId}/date-readiness
func (h *Handler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	couple, ok := h.couple(w, r)
	if !ok {
		return
	}
	res, err := h.service.GetReadiness(r.Context(), couple.Pair)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, res)
}

// GetDatePlan handles GET /matches/{matchId}/date-plan
func (h *Handler) GetDatePlan(w http.ResponseWriter, r *http.Request) {
	couple, ok := h.couple(w, r)
	if !ok {
		return
	}
	plan, err := h.service.GetDatePlan(r.Context(), couple.Pair)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, plan)
}

// RefreshDecision handles POST /matches/{matchId}/date-decision/refresh
func (h *Handler) RefreshDecision(w http.ResponseWriter, r *http.Request) {
	couple, ok := h.couple(w, r)
	if !ok {
		return
	}
	res, err := h.service.Refresh(r.Context(), couple.Pair)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, res)
}

// GetStatus handles GET /matches/{matchId}/date-status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	couple, ok := h.couple(w, r)
	if !ok {
		return
	}
	status, err := h.service.Status(r.Context(), couple.Pair)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, status)
}

// SubmitFeedback handles POST /matches/{matchId}/date-decision/feedback
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	couple, ok := h.couple(w, r)
	if !ok {
		return
	}
	var req FeedbackRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	fb, err := h.service.SubmitFeedback(r.Context(), couple.Pair, couple.RequesterID, req)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, fb)
}
