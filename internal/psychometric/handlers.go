// internal/psychometric/handlers.go

package psychometric

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-couples/internal/auth"
	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RequestAnalysis handles POST /psychometric/analysis
func (h *Handler) RequestAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req AnalyzeRequest
	if r.ContentLength > 0 {
		if err := utils.DecodeJSON(r.Body, &req); err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
	}

	analysis, err := h.service.RequestAnalysis(r.Context(), userID, req.Force)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, analysis)
}

// MarkAnswersChanged handles POST /psychometric/answers-changed.
// The questionnaire calls it after the user saves new answers.
func (h *Handler) MarkAnswersChanged(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.service.MarkNeedsReanalysis(r.Context(), userID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAnalysis handles GET /psychometric/analysis
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	analysis, err := h.service.GetAnalysis(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, analysis)
}

// GetRedFlags handles GET /psychometric/red-flags
func (h *Handler) GetRedFlags(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	flags, err := h.service.GetRedFlags(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{"red_flags": flags})
}

// GetPreview handles GET /psychometric/preview/{userId}
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	otherID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || otherID <= 0 {
		utils.RespondWithAppError(w, apperr.Invalid("invalid_user_id", "Invalid user ID"))
		return
	}

	preview, err := h.service.GetCompatibilityPreview(r.Context(), userID, otherID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, preview)
}
