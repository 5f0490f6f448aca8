// internal/otp/service.go

package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	notifications "github.com/imadgeboyega/kiekky-couples/internal/notification"
)

var (
	ErrOTPExpired        = apperr.New(apperr.KindInvalidInput, "otp_expired", "OTP has expired")
	ErrOTPInvalid        = apperr.New(apperr.KindInvalidInput, "otp_invalid", "Invalid OTP code")
	ErrOTPMaxAttempts    = apperr.New(apperr.KindForbidden, "otp_max_attempts", "Maximum verification attempts exceeded")
	ErrRateLimitExceeded = apperr.New(apperr.KindRateLimited, "otp_rate_limited", "Too many codes requested, please try again later")
	ErrDeliveryFailed    = apperr.New(apperr.KindUpstream, "otp_delivery_failed", "Failed to send OTP")
)

// Service defines the OTP service interface
type Service interface {
	GenerateOTP(ctx context.Context, req *SendOTPRequest) (*OTPResponse, error)
	VerifyOTP(ctx context.Context, req *VerifyOTPRequest) error
}

type service struct {
	store  Store
	sms    notifications.SMSService
	config Config
	now    func() time.Time
	log    *logger.Logger
}

// NewService creates a new OTP service
func NewService(store Store, sms notifications.SMSService, config Config, log *logger.Logger) Service {
	def := DefaultConfig()
	if config.Length <= 0 {
		config.Length = def.Length
	}
	if config.Expiry <= 0 {
		config.Expiry = def.Expiry
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.RateLimit.MaxRequests <= 0 {
		config.RateLimit = def.RateLimit
	}

	return &service{
		store:  store,
		sms:    sms,
		config: config,
		now:    time.Now,
		log:    log.With("component", "otp"),
	}
}

// GenerateOTP issues a new code, replacing any live one, and texts it
func (s *service) GenerateOTP(ctx context.Context, req *SendOTPRequest) (*OTPResponse, error) {
	count, err := s.store.CountSend(ctx, req.Phone, s.config.RateLimit.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if count > s.config.RateLimit.MaxRequests {
		return nil, ErrRateLimitExceeded
	}

	code, err := generateCode(s.config.Length)
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP code: %w", err)
	}

	expiresAt := s.now().Add(s.config.Expiry)
	if err := s.store.Save(ctx, req.Phone, req.Purpose, Record{CodeHash: string(hash), ExpiresAt: expiresAt}); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your Kiekky verification code is %s. It expires in %d minutes.", code, int(s.config.Expiry.Minutes()))
	if err := s.sms.SendSMS(ctx, &notifications.SMSNotification{To: req.Phone, Message: msg}); err != nil {
		s.log.Error("otp delivery failed", "recipient", req.Phone, "error", err.Error())
		_ = s.store.Delete(ctx, req.Phone, req.Purpose)
		return nil, ErrDeliveryFailed.WithCause(err)
	}

	s.log.Info("otp sent", "recipient", req.Phone, "purpose", string(req.Purpose))
	return &OTPResponse{
		Success:   true,
		Message:   "OTP sent successfully",
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyOTP checks a code. A correct code is consumed.
func (s *service) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) error {
	rec, err := s.store.Load(ctx, req.Phone, req.Purpose)
	if errors.Is(err, ErrNoCode) {
		return ErrOTPExpired
	}
	if err != nil {
		return err
	}

	if s.now().After(rec.ExpiresAt) {
		_ = s.store.Delete(ctx, req.Phone, req.Purpose)
		return ErrOTPExpired
	}
	if rec.Attempts >= s.config.MaxAttempts {
		return ErrOTPMaxAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(req.Code)) != nil {
		attempts, err := s.store.IncrementAttempts(ctx, req.Phone, req.Purpose)
		if err != nil {
			s.log.Warn("failed to update otp attempts", "error", err.Error())
		}
		if attempts >= s.config.MaxAttempts {
			return ErrOTPMaxAttempts
		}
		return ErrOTPInvalid
	}

	if err := s.store.Delete(ctx, req.Phone, req.Purpose); err != nil {
		s.log.Warn("failed to consume otp", "error", err.Error())
	}
	return nil
}

// generateCode returns a zero-padded numeric code of the given length
func generateCode(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
