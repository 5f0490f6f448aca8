// internal/games/routes.go

package games

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers lifecycle routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler) {
	g := router.PathPrefix("/games").Subrouter()
	g.HandleFunc("/invite", handler.Invite).Methods("POST")
	g.HandleFunc("/sessions/{sessionId}", handler.Get).Methods("GET")
	g.HandleFunc("/sessions/{sessionId}/accept", handler.Accept).Methods("POST")
	g.HandleFunc("/sessions/{sessionId}/decline", handler.Decline).Methods("POST")
	g.HandleFunc("/sessions/{sessionId}/cancel", handler.Cancel).Methods("POST")
	g.HandleFunc("/sessions/{sessionId}/restart", handler.RequestRestart).Methods("POST")
	g.HandleFunc("/sessions/{sessionId}/restart/accept", handler.AcceptRestart).Methods("POST")
	g.HandleFunc("/sessions/{sessionId}/restart/decline", handler.DeclineRestart).Methods("POST")
}
