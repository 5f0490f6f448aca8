// internal/matches/handlers.go
// Interaction signals reported by the messaging client

package matches

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

// RecordFirstMessage handles POST /matches/{matchId}/first-message
func (h *Handler) RecordFirstMessage(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := RequestIDs(w, r)
	if !ok {
		return
	}
	if err := h.service.RecordFirstMessage(r.Context(), matchID, userID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkStartersUsed handles POST /matches/{matchId}/starters-used
func (h *Handler) MarkStartersUsed(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := RequestIDs(w, r)
	if !ok {
		return
	}
	if err := h.service.MarkStartersUsed(r.Context(), matchID, userID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestIDs reads the authenticated user and the {matchId} path variable.
// It writes the error response itself and returns ok=false on failure.
func RequestIDs(w http.ResponseWriter, r *http.Request) (userID, matchID int64, ok bool) {
	userID, ok = auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, 0, false
	}
	matchID, err := strconv.ParseInt(mux.Vars(r)["matchId"], 10, 64)
	if err != nil || matchID <= 0 {
		utils.RespondWithAppError(w, apperr.Invalid("invalid_match_id", "Invalid match ID"))
		return 0, 0, false
	}
	return userID, matchID, true
}
