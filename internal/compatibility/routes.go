// internal/compatibility/routes.go

package compatibility

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers couple compatibility routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/matches/{matchId:[0-9]+}/compatibility", handler.GetCompatibility).Methods("GET")
	router.HandleFunc("/matches/{matchId:[0-9]+}/compatibility/refresh", handler.RefreshCompatibility).Methods("POST")
}
