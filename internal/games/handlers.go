// internal/games/handlers.go

package games

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-couples/internal/auth"
	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
)

// Handler serves lifecycle endpoints shared by all games
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SessionRequest reads the authenticated user and {sessionId}.
// It writes the error response itself and returns ok=false on failure.
func SessionRequest(w http.ResponseWriter, r *http.Request) (userID int64, sessionID string, ok bool) {
	userID, ok = auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, "", false
	}
	return userID, mux.Vars(r)["sessionId"], true
}

// Invite handles POST /games/invite
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req InviteRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	session, err := h.service.Invite(r.Context(), userID, req.PartnerID, req.GameType)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, session)
}

// Get handles GET /games/sessions/{sessionId}. Game-specific content is served by each game.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Get)
}

// Accept handles POST /games/sessions/{sessionId}/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Accept)
}

// Decline handles POST /games/sessions/{sessionId}/decline
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Decline)
}

// Cancel handles POST /games/sessions/{sessionId}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Cancel)
}

// RequestRestart handles POST /games/sessions/{sessionId}/restart
func (h *Handler) RequestRestart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.RequestRestart)
}

// AcceptRestart handles POST /games/sessions/{sessionId}/restart/accept
func (h *Handler) AcceptRestart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.AcceptRestart)
}

// DeclineRestart handles POST /games/sessions/{sessionId}/restart/decline
func (h *Handler) DeclineRestart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.DeclineRestart)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID string, userID int64) (*Session, error)) {
	userID, sessionID, ok := SessionRequest(w, r)
	if !ok {
		return
	}
	session, err := op(r.Context(), sessionID, userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, session)
}
