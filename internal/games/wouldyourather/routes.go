// internal/games/wouldyourather/routes.go

package wouldyourather

import "github.com/gorilla/mux"

func RegisterRoutes(router *mux.Router, handler *Handler) {
	g := router.PathPrefix("/games/would-you-rather").Subrouter()
	g.HandleFunc("/{sessionId}", handler.GetGame).Methods("GET")
	g.HandleFunc("/{sessionId}/choices", handler.SubmitChoices).Methods("POST")
	g.HandleFunc("/{sessionId}/predictions", handler.SubmitPredictions).Methods("POST")
}
