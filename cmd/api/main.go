// cmd/api/main.go
// Main entry point for the couples API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/imadgeboyega/kiekky-couples/internal/auth"
	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/database"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
	"github.com/imadgeboyega/kiekky-couples/internal/compatibility"
	"github.com/imadgeboyega/kiekky-couples/internal/config"
	"github.com/imadgeboyega/kiekky-couples/internal/dateplan"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/games/dreamboard"
	"github.com/imadgeboyega/kiekky-couples/internal/games/spectrum"
	"github.com/imadgeboyega/kiekky-couples/internal/games/twotruths"
	"github.com/imadgeboyega/kiekky-couples/internal/games/wouldyourather"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
	notifications "github.com/imadgeboyega/kiekky-couples/internal/notification"
	"github.com/imadgeboyega/kiekky-couples/internal/otp"
	"github.com/imadgeboyega/kiekky-couples/internal/profile"
	"github.com/imadgeboyega/kiekky-couples/internal/psychometric"
	"github.com/imadgeboyega/kiekky-couples/internal/readiness"
	"github.com/imadgeboyega/kiekky-couples/internal/storage"
)

var startTime = time.Now()

func main() {
	fmt.Println("========================================")
	fmt.Println("🚀 Starting Kiekky Couples API")
	fmt.Println("========================================")

	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if envErr != nil {
		log.Warn("⚠️  No .env file found, using environment variables", "error", envErr.Error())
	} else {
		log.Info("✅ .env file loaded")
	}

	// 3. Validate configuration
	log.Info("✔️  Step 3: Validating configuration...", "environment", cfg.Environment)
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed", "error", err.Error())
	}
	utils.SetDebugErrors(cfg.DebugErrors)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Connect to PostgreSQL
	log.Info("🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresFromURL(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL", "error", err.Error())
	}
	defer db.Close()
	log.Info("✅ Connected to PostgreSQL")

	// 5. Connect to Redis (optional)
	log.Info("📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("⚠️  Redis unavailable, continuing without it", "error", err.Error())
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("✅ Connected to Redis")
		}
	} else {
		log.Warn("⚠️  Redis URL not configured, OTP and readiness cache are disabled")
	}

	// 6. Run database migrations
	log.Info("🔨 Step 6: Running database migrations...")
	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatal("❌ Failed to run migrations", "error", err.Error())
	}
	log.Info("✅ Database migrations completed")

	// 7. Notification channels
	log.Info("🔔 Step 7: Initializing notifications...")
	var push notifications.PushService = notifications.NewMockPushService(log)
	if cfg.EnablePush {
		fcm, err := notifications.NewFCMPushService(ctx, cfg.FCMCredentialsFile, cfg.FCMCredentialsJSON, log)
		if err != nil {
			log.Warn("⚠️  FCM init failed, using mock push", "error", err.Error())
		} else {
			push = fcm
			log.Info("   ✅ Using FCM for push")
		}
	}

	var sms notifications.SMSService
	switch cfg.SMSProvider {
	case "twilio":
		twilio, err := notifications.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, log)
		if err != nil {
			log.Fatal("❌ Failed to init Twilio", "error", err.Error())
		}
		sms = twilio
		log.Info("   ✅ Using Twilio for SMS")
	default:
		sms = notifications.NewMockSMSService(log)
		log.Warn("   ⚠️  Using mock SMS provider (development mode)")
	}

	var email notifications.EmailService
	switch cfg.EmailProvider {
	case "sendgrid":
		email = notifications.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Info("   ✅ Using SendGrid for emails")
	default:
		email = notifications.NewMockEmailService(log)
		log.Warn("   ⚠️  Using mock email provider (development mode)")
	}

	profileRepo := profile.NewPostgresRepository(db)
	notifier := notifications.NewService(profileRepo, push, email, log)

	// 8. OTP (needs Redis)
	log.Info("📱 Step 8: Initializing OTP system...")
	var otpHandler *otp.Handler
	if redisClient != nil {
		otpCfg := otp.DefaultConfig()
		otpCfg.Length = cfg.OTPLength
		otpCfg.Expiry = cfg.OTPExpiry
		otpCfg.MaxAttempts = cfg.MaxOTPAttempts
		otpService := otp.NewService(otp.NewRedisStore(redisClient), sms, otpCfg, log)
		otpHandler = otp.NewHandler(otpService)
		log.Info("✅ OTP system initialized")
	} else {
		log.Warn("⚠️  OTP disabled, Redis is required")
	}

	// 9. Language model client
	log.Info("🧠 Step 9: Initializing LLM client...", "model", cfg.LLMModel)
	if cfg.LLMAPIKey == "" {
		log.Warn("⚠️  LLM_API_KEY is empty, AI features will fall back or fail")
	}
	llmClient := llm.NewClient(llm.Config{
		BaseURL:         cfg.LLMBaseURL,
		APIKey:          cfg.LLMAPIKey,
		Model:           cfg.LLMModel,
		TranscribeModel: cfg.LLMTranscribeModel,
		Temperature:     cfg.LLMTemperature,
		MaxTokens:       cfg.LLMMaxTokens,
		MaxRetries:      cfg.LLMMaxRetries,
		RetryBackoff:    cfg.LLMRetryBackoff,
		Timeout:         cfg.LLMTimeout,
	}, log)

	// 10. Matches and psychometric analysis
	log.Info("🧬 Step 10: Initializing matches and psychometric analysis...")
	matchService := matches.NewService(matches.NewPostgresRepository(db))
	psychService := psychometric.NewService(
		psychometric.NewPostgresRepository(db),
		psychometric.NewLLMAnalyzer(llmClient),
		profileRepo,
		cfg.AnalysisMinQuestions,
		log,
	)

	// 11. Games
	log.Info("🎲 Step 11: Initializing games...")
	bus := games.NewEventBus(log)
	gamesRepo := games.NewPostgresRepository(db)
	lifecycle := games.NewService(gamesRepo, matchService, profileRepo, notifier, bus, clock.Real(), log)

	twoTruths := twotruths.NewService(lifecycle, log)
	lifecycle.Register(withInviteTTL(twoTruths.Engine(), cfg.AsyncInviteTTL))

	wouldYouRather, err := wouldyourather.NewService(lifecycle, log)
	if err != nil {
		log.Fatal("❌ Failed to load would-you-rather catalog", "error", err.Error())
	}
	lifecycle.Register(withInviteTTL(wouldYouRather.Engine(), cfg.AsyncInviteTTL))

	dreamBoard, err := dreamboard.NewService(lifecycle, log)
	if err != nil {
		log.Fatal("❌ Failed to load dream board catalog", "error", err.Error())
	}
	lifecycle.Register(withInviteTTL(dreamBoard.Engine(), cfg.AsyncInviteTTL))

	// 12. Intimacy Spectrum (real-time)
	log.Info("🔌 Step 12: Initializing Intimacy Spectrum...")
	hub := spectrum.NewHub(log)
	coord, err := spectrum.NewCoordinator(lifecycle, hub, spectrum.NewLLMInsights(llmClient), spectrum.Config{
		RoundDuration:  cfg.SpectrumRoundDuration,
		RevealDuration: cfg.SpectrumRevealDuration,
		Countdown:      cfg.SpectrumCountdown,
		InviteTTL:      cfg.SpectrumInviteTTL,
		ReconnectGrace: cfg.SpectrumReconnectGrace,
	}, log)
	if err != nil {
		log.Fatal("❌ Failed to create spectrum coordinator", "error", err.Error())
	}
	lifecycle.Register(coord.Engine())

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	socket := spectrum.NewSocket(hub, coord, authMiddleware, log).WithRate(cfg.SpectrumAnswersPerSecond, 0)

	var store storage.ObjectStore
	if cfg.UseS3 {
		sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
		if err != nil {
			log.Fatal("❌ Failed to create AWS session", "error", err.Error())
		}
		store = storage.NewS3Store(sess, cfg.S3Bucket)
		log.Info("   ✅ Using S3 for voice notes", "bucket", cfg.S3Bucket)
	} else {
		local, err := storage.NewLocalStore(cfg.VoiceNoteDir)
		if err != nil {
			log.Fatal("❌ Failed to prepare voice note directory", "error", err.Error())
		}
		store = local
		log.Info("   ✅ Using local storage for voice notes", "dir", cfg.VoiceNoteDir)
	}
	voices, err := spectrum.NewVoiceNoteService(lifecycle, spectrum.NewPostgresVoiceNoteRepository(db), store, llmClient, log)
	if err != nil {
		log.Fatal("❌ Failed to create voice note service", "error", err.Error())
	}

	// 13. Compatibility and date readiness
	log.Info("💞 Step 13: Initializing compatibility and date readiness...")
	compatService := compatibility.NewService(
		gamesRepo,
		compatibility.NewPostgresRepository(db),
		compatibility.NewLLMNarrator(llmClient),
		clock.Real(),
		cfg.CompatibilityStaleAfter,
		log,
	)

	var readinessCache readiness.Cache = readiness.NopCache{}
	if redisClient != nil {
		readinessCache = readiness.NewRedisCache(redisClient)
	}
	planner := dateplan.NewGenerator(llmClient, dateplan.DistanceLimits{
		StandardKM: cfg.DistanceLimitKM,
		PremiumKM:  cfg.PremiumDistanceLimitKM,
	}, clock.Real(), log)
	readinessService := readiness.NewService(readiness.Deps{
		Analyses:   psychService,
		Aggregates: compatService,
		Signals:    matchService,
		Users:      profileRepo,
		Sessions:   gamesRepo,
		Planner:    planner,
		Repo:       readiness.NewPostgresRepository(db),
		Cache:      readinessCache,
		Notifier:   notifier,
		Clock:      clock.Real(),
		TTL:        cfg.ReadinessCacheTTL,
	}, log)

	bus.Subscribe(compatService.OnGameCompleted)
	bus.Subscribe(readinessService.OnGameCompleted)

	// 14. Router
	log.Info("🛣️  Step 14: Setting up routes...")
	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)

	router.HandleFunc("/health", healthCheck(db, redisClient, hub)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/ws/spectrum", socket.ServeWS)

	api := router.PathPrefix("/api/v1").Subrouter()
	if otpHandler != nil {
		otp.RegisterRoutes(api, otpHandler)
	}

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware.Authenticate)
	matches.RegisterRoutes(protected, matches.NewHandler(matchService))
	profile.RegisterRoutes(protected, profile.NewHandler(profileRepo, matchService))
	psychometric.RegisterRoutes(protected, psychometric.NewHandler(psychService))
	games.RegisterRoutes(protected, games.NewHandler(lifecycle))
	twotruths.RegisterRoutes(protected, twotruths.NewHandler(twoTruths))
	wouldyourather.RegisterRoutes(protected, wouldyourather.NewHandler(wouldYouRather))
	dreamboard.RegisterRoutes(protected, dreamboard.NewHandler(dreamBoard))
	spectrum.RegisterRoutes(protected, spectrum.NewHandler(coord, voices))
	compatibility.RegisterRoutes(protected, compatibility.NewHandler(compatService, matchService))
	readiness.RegisterRoutes(protected, readiness.NewHandler(readinessService, matchService))

	// 15. Background workers
	log.Info("⚙️  Step 15: Starting background workers...")
	go hub.Run()

	recovered, err := coord.Recover(ctx)
	if err != nil {
		log.Error("❌ Failed to recover live spectrum sessions", "error", err.Error())
	} else if recovered > 0 {
		log.Info("♻️  Recovered live spectrum sessions", "count", recovered)
	}

	sweeper := games.NewSweeper(lifecycle, cfg.InviteSweepInterval, log)
	go sweeper.Start(ctx)

	// 16. Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsMiddleware(router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("🌐 Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("❌ Server failed", "error", err.Error())
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("❌ Server forced to shutdown", "error", err.Error())
	}

	coord.Shutdown()
	hub.Shutdown()
	log.Info("👋 Server exited")
}

// withInviteTTL applies the configured invitation lifetime to an asynchronous game
func withInviteTTL(e games.Engine, ttl time.Duration) games.Engine {
	e.InviteTTL = ttl
	return e
}
