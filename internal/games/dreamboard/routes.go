// internal/games/dreamboard/routes.go

package dreamboard

import "github.com/gorilla/mux"

func RegisterRoutes(router *mux.Router, handler *Handler) {
	g := router.PathPrefix("/games/dream-board").Subrouter()
	g.HandleFunc("/{sessionId}", handler.GetGame).Methods("GET")
	g.HandleFunc("/{sessionId}/board", handler.SubmitBoard).Methods("POST")
	g.HandleFunc("/{sessionId}/reactions", handler.SubmitReactions).Methods("POST")
}
