// internal/games/twotruths/routes.go

package twotruths

import "github.com/gorilla/mux"

func RegisterRoutes(router *mux.Router, handler *Handler) {
	g := router.PathPrefix("/games/two-truths").Subrouter()
	g.HandleFunc("/{sessionId}", handler.GetGame).Methods("GET")
	g.HandleFunc("/{sessionId}/statements", handler.SubmitStatements).Methods("POST")
	g.HandleFunc("/{sessionId}/guesses", handler.SubmitGuesses).Methods("POST")
}
