// internal/matches/routes.go

package matches

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers match signal routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/matches/{matchId:[0-9]+}/first-message", handler.RecordFirstMessage).Methods("POST")
	router.HandleFunc("/matches/{matchId:[0-9]+}/starters-used", handler.MarkStartersUsed).Methods("POST")
}
