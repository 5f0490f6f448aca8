// internal/otp/handlers.go

package otp

import (
	"net/http"

	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
)

// Handler handles OTP-related HTTP requests
type Handler struct {
	service Service
}

// NewHandler creates a new OTP handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SendOTP handles POST /otp/send
func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	response, err := h.service.GenerateOTP(r.Context(), &req)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, response)
}

// VerifyOTP handles POST /otp/verify
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	if err := h.service.VerifyOTP(r.Context(), &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, OTPResponse{Success: true, Message: "OTP verified successfully"})
}
