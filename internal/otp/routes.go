// internal/otp/routes.go

package otp

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers OTP routes. They are public.
func RegisterRoutes(router *mux.Router, handler *Handler) {
	otp := router.PathPrefix("/otp").Subrouter()
	otp.HandleFunc("/send", handler.SendOTP).Methods("POST")
	otp.HandleFunc("/verify", handler.VerifyOTP).Methods("POST")
}
