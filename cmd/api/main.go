package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/popdoc-api/config"
	"github.com/jwalitptl/popdoc-api/internal/email"
	authh "github.com/jwalitptl/popdoc-api/internal/handler/auth"
	chath "github.com/jwalitptl/popdoc-api/internal/handler/chat"
	doctorh "github.com/jwalitptl/popdoc-api/internal/handler/doctor"
	"github.com/jwalitptl/popdoc-api/internal/handler/health"
	imageh "github.com/jwalitptl/popdoc-api/internal/handler/image"
	profileh "github.com/jwalitptl/popdoc-api/internal/handler/profile"
	"github.com/jwalitptl/popdoc-api/internal/handler/prometheus"
	"github.com/jwalitptl/popdoc-api/internal/middleware"
	"github.com/jwalitptl/popdoc-api/internal/router"
	authService "github.com/jwalitptl/popdoc-api/internal/service/auth"
	chatService "github.com/jwalitptl/popdoc-api/internal/service/chat"
	"github.com/jwalitptl/popdoc-api/internal/service/doctor"
	imageService "github.com/jwalitptl/popdoc-api/internal/service/image"
	"github.com/jwalitptl/popdoc-api/internal/service/llm"
	profileService "github.com/jwalitptl/popdoc-api/internal/service/profile"
	"github.com/jwalitptl/popdoc-api/internal/service/response"
	"github.com/jwalitptl/popdoc-api/internal/service/speech"
	"github.com/jwalitptl/popdoc-api/internal/worker"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
	"github.com/jwalitptl/popdoc-api/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
	})
	log.Logger = appLog.Zerolog()

	m := metrics.New("popdoc")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	users, err := openStore(ctx, cfg.Storage, m)
	if err != nil {
		appLog.Fatal(err, "failed to open user store", "driver", cfg.Storage.Driver)
	}
	defer func() {
		if err := users.Close(); err != nil {
			appLog.Error(err, "failed to close user store")
		}
	}()

	// Doctor catalog and phrase book
	doctors := doctor.Default()
	book := response.DefaultPhraseBook(doctors.List())
	if err := book.Validate(doctors.List()); err != nil {
		appLog.Fatal(err, "phrase book does not cover the doctor catalog")
	}
	selector := response.NewSelector(book, nil, nil)

	// External providers
	providerClient := &http.Client{Timeout: cfg.Speech.Timeout}

	var ai llm.Client
	var generator imageService.Generator
	if cfg.OpenAI.APIKey != "" {
		openAI := llm.NewOpenAIClient(llm.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			ChatModel:   cfg.OpenAI.ChatModel,
			ImageModel:  cfg.OpenAI.ImageModel,
			ImageSize:   cfg.OpenAI.ImageSize,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		}, &http.Client{Timeout: cfg.OpenAI.Timeout})
		generator = openAI
		if cfg.OpenAI.ChatEnabled {
			ai = openAI
		}
	} else {
		appLog.Warn(nil, "OPENAI_API_KEY not set, image generation disabled")
	}

	var primary, fallback speech.Provider
	if cfg.Speech.Google.APIKey != "" {
		primary = speech.NewGoogleProvider(speech.GoogleConfig{
			APIKey:       cfg.Speech.Google.APIKey,
			Endpoint:     cfg.Speech.Google.Endpoint,
			LanguageCode: cfg.Speech.Google.LanguageCode,
			DefaultVoice: cfg.Speech.Google.DefaultVoice,
			Timeout:      cfg.Speech.Timeout,
		}, providerClient)
	} else {
		appLog.Warn(nil, "GOOGLE_TTS_API_KEY not set, replies will be text only")
	}
	if cfg.Speech.ElevenLabs.APIKey != "" {
		fallback = speech.NewElevenLabsProvider(speech.ElevenLabsConfig{
			APIKey:       cfg.Speech.ElevenLabs.APIKey,
			BaseURL:      cfg.Speech.ElevenLabs.BaseURL,
			ModelID:      cfg.Speech.ElevenLabs.ModelID,
			DefaultVoice: cfg.Speech.ElevenLabs.DefaultVoice,
			Timeout:      cfg.Speech.Timeout,
		}, providerClient)
	}
	synthesizer := speech.NewAdapter(primary, fallback, speech.BreakerConfig{
		MaxFailures: cfg.Speech.Breaker.MaxFailures,
		Timeout:     cfg.Speech.Breaker.Timeout,
	}, m, appLog)

	var publisher imageService.Publisher
	cloudinaryCfg := imageService.CloudinaryConfig{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		Folder:    cfg.Cloudinary.Folder,
	}
	if cloudinaryCfg.Enabled() {
		p, err := imageService.NewCloudinaryPublisher(cloudinaryCfg)
		if err != nil {
			appLog.Fatal(err, "failed to initialize image publisher")
		}
		publisher = p
	}

	// Email
	mailer := email.NewNoopService()
	emailCfg := email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	if emailCfg.Enabled() {
		mailer = email.NewSMTPService(emailCfg, m, appLog)
	}

	// Initialize services
	authSvc, err := authService.NewService(users, security.NewBcryptHasher(cfg.Auth.BcryptCost), authService.Config{
		Secret: cfg.Auth.Secret,
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		appLog.Fatal(err, "failed to initialize auth service")
	}
	if cfg.Auth.SeedDemoUser {
		created, err := authSvc.EnsureDemoUser(ctx, cfg.Auth.DemoEmail, cfg.Auth.DemoPassword)
		if err != nil {
			appLog.Fatal(err, "failed to seed demo user")
		}
		if created {
			appLog.Info("demo user created", "email", cfg.Auth.DemoEmail)
		}
	}

	profileSvc := profileService.NewService(users, doctors, mailer, appLog)

	chatOpts := []chatService.Option{
		chatService.WithSpeech(synthesizer),
		chatService.WithHistory(profileSvc),
		chatService.WithMetrics(m),
	}
	if ai != nil {
		chatOpts = append(chatOpts, chatService.WithAI(ai))
	}
	chatSvc := chatService.NewService(doctors, selector, appLog, chatOpts...)

	imageSvc := imageService.NewService(generator, publisher, imageService.Config{
		AvatarDir:   cfg.Server.AvatarDir,
		SaveAvatars: cfg.Image.SaveAvatars,
	}, m, appLog)

	// Reminder worker
	if cfg.Reminders.Enabled {
		reminders := worker.NewReminderWorker(users, mailer, cfg.Reminders.At, appLog)
		if err := reminders.Start(ctx); err != nil {
			appLog.Fatal(err, "failed to start reminder worker")
		}
	}

	// Setup router
	var limit rate.Limit
	if cfg.RateLimit.Enabled {
		limit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}
	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		router.Handlers{
			Auth:    authh.NewHandler(authSvc),
			Chat:    chath.NewHandler(chatSvc),
			Image:   imageh.NewHandler(imageSvc),
			Doctor:  doctorh.NewHandler(doctors),
			Profile: profileh.NewHandler(profileSvc),
			Health:  health.NewHandler(map[string]health.Pinger{"storage": users}),
			Metrics: prometheus.New(m),
		},
		m,
		appLog,
		router.RouterConfig{
			Mode:           cfg.Server.Mode,
			RateLimit:      limit,
			RateBurst:      cfg.RateLimit.Burst,
			CORSOrigins:    cfg.CORS.AllowedOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodySize:    cfg.Server.MaxBodyBytes,
			AvatarDir:      cfg.Server.AvatarDir,
			LogBodies:      cfg.Server.LogBodies,
		},
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		appLog.Info("server listening", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	appLog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(err, "server forced to shutdown")
	}
	appLog.Info("server exited")
}
