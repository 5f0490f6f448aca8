// internal/compatibility/handlers.go

package compatibility

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

// GetCompatibility handles GET /matches/{matchId}/compatibility
func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matches.RequestIDs(w, r)
	if !ok {
		return
	}
	couple, err := h.matches.ResolveCouple(r.Context(), matchID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	agg, err := h.service.Get(r.Context(), couple.Pair)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, agg)
}

// RefreshCompatibility handles POST /matches/{matchId}/compatibility/refresh
func (h *Handler) RefreshCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matches.RequestIDs(w, r)
	if !ok {
		return
	}
	couple, err := h.matches.ResolveCouple(r.Context(), matchID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	agg, err := h.service.Refresh(r.Context(), couple.Pair)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, agg)
}
