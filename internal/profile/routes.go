// internal/profile/routes.go

package profile

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers profile routes on the authenticated subrouter
func RegisterRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/matches/{matchId:[0-9]+}/partner", handler.GetPartner).Methods("GET")
}
