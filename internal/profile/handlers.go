// internal/profile/handlers.go

package profile

import (
	"net/http"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

// PartnerCard is what a user sees about the other side of a match
type PartnerCard struct {
	Summary
	City      string `json:"city,omitempty"`
	IsPremium bool   `json:"is_premium"`
}

// Handler serves partner cards
type Handler struct {
	users   Repository
	matches matches.Service
}

// NewHandler creates a new profile handler
func NewHandler(users Repository, matchService matches.Service) *Handler {
	return &Handler{users: users, matches: matchService}
}

// GetPartner handles GET /matches/{matchId}/partner
func (h *Handler) GetPartner(w http.ResponseWriter, r *http.Request) {
	userID, matchID, ok := matches.RequestIDs(w, r)
	if !ok {
		return
	}
	couple, err := h.matches.ResolveCouple(r.Context(), matchID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	blocked, err := h.users.IsBlockedEitherWay(r.Context(), couple.RequesterID, couple.PartnerID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if blocked {
		utils.RespondWithAppError(w, apperr.ErrUserBlocked)
		return
	}

	partner, err := h.users.GetUser(r.Context(), couple.PartnerID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, PartnerCard{
		Summary:   partner.Summary(),
		City:      partner.City,
		IsPremium: partner.IsPremium,
	})
}
