// internal/psychometric/routes.go

package psychometric

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers psychometric routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler) {
	p := router.PathPrefix("/psychometric").Subrouter()
	p.HandleFunc("/analysis", handler.RequestAnalysis).Methods("POST")
	p.HandleFunc("/analysis", handler.GetAnalysis).Methods("GET")
	p.HandleFunc("/answers-changed", handler.MarkAnswersChanged).Methods("POST")
	p.HandleFunc("/red-flags", handler.GetRedFlags).Methods("GET")
	p.HandleFunc("/preview/{userId:[0-9]+}", handler.GetPreview).Methods("GET")
}
