package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SpectrumRoundDuration != 20*time.Second {
		t.Fatalf("round duration: want=%v got=%v", 20*time.Second, cfg.SpectrumRoundDuration)
	}
	if cfg.SpectrumInviteTTL != 5*time.Minute || cfg.AsyncInviteTTL != 24*time.Hour {
		t.Fatalf("invite TTLs: got spectrum=%v async=%v", cfg.SpectrumInviteTTL, cfg.AsyncInviteTTL)
	}
	if cfg.AnalysisMinQuestions != 15 {
		t.Fatalf("min questions: want=15 got=%d", cfg.AnalysisMinQuestions)
	}
	if cfg.LLMTemperature != 0.7 || cfg.LLMMaxRetries != 3 {
		t.Fatalf("llm: got temperature=%v retries=%d", cfg.LLMTemperature, cfg.LLMMaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() *Config {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	cases := map[string]func(c *Config){
		"missing database":    func(c *Config) { c.DatabaseURL = "" },
		"premium below std":   func(c *Config) { c.PremiumDistanceLimitKM = 10 },
		"bad otp length":      func(c *Config) { c.OTPLength = 12 },
		"twilio incomplete":   func(c *Config) { c.SMSProvider = "twilio" },
		"default jwt in prod": func(c *Config) { c.Environment = "production" },
		"zero round":          func(c *Config) { c.SpectrumRoundDuration = 0 },
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: want error got nil", name)
		}
	}
}
