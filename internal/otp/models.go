// internal/otp/models.go

package otp

import (
	"time"
)

// Purpose represents the OTP use case
type Purpose string

const (
	PurposeSignin      Purpose = "signin"
	PurposePhoneVerify Purpose = "phone_verify"
)

// Record is the stored state of an issued code
type Record struct {
	CodeHash  string
	Attempts  int
	ExpiresAt time.Time
}

// SendOTPRequest represents request to send OTP
type SendOTPRequest struct {
	Phone   string  `json:"phone" validate:"required,e164"`
	Purpose Purpose `json:"purpose" validate:"required,oneof=signin phone_verify"`
}

// VerifyOTPRequest represents request to verify OTP
type VerifyOTPRequest struct {
	Phone   string  `json:"phone" validate:"required,e164"`
	Code    string  `json:"code" validate:"required,numeric"`
	Purpose Purpose `json:"purpose" validate:"required,oneof=signin phone_verify"`
}

// OTPResponse represents OTP operation response
type OTPResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Config holds OTP configuration
type Config struct {
	Length      int
	Expiry      time.Duration
	MaxAttempts int
	RateLimit   RateLimitConfig
}

// RateLimitConfig caps sends per phone number
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultConfig is 6 digits, 10 minutes, 3 attempts, 3 sends an hour
func DefaultConfig() Config {
	return Config{
		Length:      6,
		Expiry:      10 * time.Minute,
		MaxAttempts: 3,
		RateLimit: RateLimitConfig{
			MaxRequests: 3,
			Window:      time.Hour,
		},
	}
}
