// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	DebugErrors bool   `env:"DEBUG_ERRORS" envDefault:"false"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// Security
	JWTSecret string `env:"JWT_SECRET" envDefault:"your-super-secret-key-change-this-in-production"`

	// Psychometric analysis
	AnalysisMinQuestions int `env:"ANALYSIS_MIN_QUESTIONS" envDefault:"15"`

	// Intimacy Spectrum timings
	SpectrumRoundDuration    time.Duration `env:"SPECTRUM_ROUND_DURATION" envDefault:"20s"`
	SpectrumRevealDuration   time.Duration `env:"SPECTRUM_REVEAL_DURATION" envDefault:"5s"`
	SpectrumCountdown        time.Duration `env:"SPECTRUM_COUNTDOWN" envDefault:"3s"`
	SpectrumInviteTTL        time.Duration `env:"SPECTRUM_INVITE_TTL" envDefault:"5m"`
	SpectrumReconnectGrace   time.Duration `env:"SPECTRUM_RECONNECT_GRACE" envDefault:"60s"`
	SpectrumAnswersPerSecond float64       `env:"SPECTRUM_ANSWERS_PER_SECOND" envDefault:"5"`

	// Async games
	AsyncInviteTTL      time.Duration `env:"ASYNC_INVITE_TTL" envDefault:"24h"`
	InviteSweepInterval time.Duration `env:"INVITE_SWEEP_INTERVAL" envDefault:"1m"`

	// Date planning
	DistanceLimitKM        int `env:"DISTANCE_LIMIT_KM" envDefault:"50"`
	PremiumDistanceLimitKM int `env:"PREMIUM_DISTANCE_LIMIT_KM" envDefault:"100"`

	// Derived aggregates
	ReadinessCacheTTL       time.Duration `env:"READINESS_CACHE_TTL" envDefault:"24h"`
	CompatibilityStaleAfter time.Duration `env:"COMPATIBILITY_STALE_AFTER" envDefault:"24h"`

	// LLM
	LLMBaseURL         string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com"`
	LLMAPIKey          string        `env:"LLM_API_KEY"`
	LLMModel           string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTranscribeModel string        `env:"LLM_TRANSCRIBE_MODEL" envDefault:"whisper-1"`
	LLMTemperature     float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	LLMMaxTokens       int           `env:"LLM_MAX_TOKENS" envDefault:"2000"`
	LLMMaxRetries      int           `env:"LLM_MAX_RETRIES" envDefault:"3"`
	LLMRetryBackoff    time.Duration `env:"LLM_RETRY_BACKOFF" envDefault:"2s"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	// Storage
	UseS3     bool   `env:"USE_S3" envDefault:"false"`
	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Bucket  string `env:"S3_BUCKET" envDefault:"kiekky-voice-notes"`
	// used when USE_S3 is false
	VoiceNoteDir string `env:"VOICE_NOTE_DIR" envDefault:"./uploads/voice-notes"`

	// Notifications
	SMSProvider        string `env:"SMS_PROVIDER" envDefault:"mock"` // twilio or mock
	TwilioAccountSID   string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken    string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber   string `env:"TWILIO_FROM_NUMBER"`
	EmailProvider      string `env:"EMAIL_PROVIDER" envDefault:"mock"` // sendgrid or mock
	SendGridAPIKey     string `env:"SENDGRID_API_KEY"`
	EmailFrom          string `env:"EMAIL_FROM" envDefault:"noreply@kiekky.com"`
	EnablePush         bool   `env:"ENABLE_PUSH_NOTIFICATIONS" envDefault:"false"`
	FCMCredentialsFile string `env:"FCM_CREDENTIALS_FILE"`
	FCMCredentialsJSON string `env:"FCM_CREDENTIALS_JSON"`

	// OTP
	OTPLength      int           `env:"OTP_LENGTH" envDefault:"6"`
	OTPExpiry      time.Duration `env:"OTP_EXPIRY" envDefault:"10m"`
	MaxOTPAttempts int           `env:"OTP_MAX_ATTEMPTS" envDefault:"3"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWTSecret == "your-super-secret-key-change-this-in-production" && c.IsProduction() {
		return fmt.Errorf("JWT secret must be changed for production")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}

	if c.AnalysisMinQuestions < 1 {
		return fmt.Errorf("analysis minimum questions must be positive")
	}

	// Spectrum timers
	if c.SpectrumRoundDuration <= 0 || c.SpectrumRevealDuration <= 0 || c.SpectrumCountdown < 0 {
		return fmt.Errorf("spectrum round, reveal and countdown durations must be positive")
	}
	if c.SpectrumInviteTTL <= 0 || c.AsyncInviteTTL <= 0 {
		return fmt.Errorf("invitation TTLs must be positive")
	}
	if c.SpectrumReconnectGrace <= 0 {
		return fmt.Errorf("reconnect grace must be positive")
	}

	if c.DistanceLimitKM < 1 || c.PremiumDistanceLimitKM < c.DistanceLimitKM {
		return fmt.Errorf("invalid distance limits: standard=%d premium=%d", c.DistanceLimitKM, c.PremiumDistanceLimitKM)
	}

	// LLM
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM temperature must be between 0 and 2")
	}
	if c.LLMMaxRetries < 1 || c.LLMMaxRetries > 10 {
		return fmt.Errorf("LLM max retries must be between 1 and 10")
	}

	// OTP
	if c.OTPLength < 4 || c.OTPLength > 8 {
		return fmt.Errorf("OTP length must be between 4 and 8")
	}
	if c.MaxOTPAttempts < 1 || c.MaxOTPAttempts > 10 {
		return fmt.Errorf("max OTP attempts must be between 1 and 10")
	}

	switch c.SMSProvider {
	case "twilio":
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFromNumber == "" {
			return fmt.Errorf("Twilio configuration incomplete")
		}
	case "mock":
		if c.IsProduction() {
			return fmt.Errorf("mock SMS provider cannot be used in production")
		}
	default:
		return fmt.Errorf("invalid SMS provider: %s", c.SMSProvider)
	}

	switch c.EmailProvider {
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
	case "mock":
	default:
		return fmt.Errorf("invalid email provider: %s", c.EmailProvider)
	}

	if c.UseS3 && c.S3Bucket == "" {
		return fmt.Errorf("S3 bucket is required when USE_S3 is set")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
