// internal/readiness/routes.go

package readiness

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers date-readiness routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/matches/{matchId:[0-9]+}/date-readiness", handler.GetReadiness).Methods("GET")
	router.HandleFunc("/matches/{matchId:[0-9]+}/date-plan", handler.GetDatePlan).Methods("GET")
	router.HandleFunc("/matches/{matchId:[0-9]+}/date-status", handler.GetStatus).Methods("GET")
	router.HandleFunc("/matches/{matchId:[0-9]+}/date-decision/refresh", handler.RefreshDecision).Methods("POST")
	router.HandleFunc("/matches/{matchId:[0-9]+}/date-decision/feedback", handler.SubmitFeedback).Methods("POST")
}
