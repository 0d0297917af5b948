// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omnimap-agent/internal/application"
	"omnimap-agent/internal/config"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/domain/ports/repository"
	aiAdapters "omnimap-agent/internal/infra/adapters/ai"
	placesAdapters "omnimap-agent/internal/infra/adapters/places"
	tele "omnimap-agent/internal/infra/adapters/telegram"
	pg "omnimap-agent/internal/infra/db/postgres"
	httpapi "omnimap-agent/internal/infra/http"
	"omnimap-agent/internal/infra/logging"
	"omnimap-agent/internal/infra/metrics"
	red "omnimap-agent/internal/infra/redis"
	"omnimap-agent/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	pg.StartPoolStatsReporter(ctx, pool, 30*time.Second)

	// ---- Redis (optional: cache + rate limiting degrade without it) ----
	var rateLimiter *red.RateLimiter
	var sessionCache *red.SessionCache
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
		sessionCache = red.NewSessionCache(redisClient, cfg.Redis.TTL)
	} else {
		logger.Warn().Msg("redis not configured; rate limiting and session caching disabled")
	}

	// ---- Repositories ----
	jobRepo := pg.NewJobRepo(pool)
	memoryRepo := pg.NewMemoryRepo(pool)
	requestRepo := pg.NewIncomingRequestRepo(pool)

	var sessions repository.SessionRepository = pg.NewSessionRepo(pool)
	if sessionCache != nil {
		sessions = pg.NewSessionRepoCacheDecorator(sessions, sessionCache)
	}

	// ---- Use cases ----
	sessionUC := usecase.NewSessionLifecycle(sessions, memoryRepo, cfg.Session.InactivityThreshold, logger)
	memoryUC := usecase.NewConversationMemory(memoryRepo, cfg.Session.ContextLimit, cfg.Session.PromptMaxMessages, logger)

	// ---- AI backend (OpenAI -> Gemini -> noop) ----
	var classifier adapter.Classifier
	var responder adapter.ChatResponder
	switch {
	case cfg.AI.OpenAIKey != "":
		c, err := aiAdapters.NewOpenAIClassifier(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai classifier init failed")
		}
		classifier, responder = c, c
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI backend: openai")
	case cfg.AI.GeminiKey != "":
		c, err := aiAdapters.NewGeminiClassifier(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini classifier init failed")
		}
		classifier, responder = c, c
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI backend: gemini")
	default:
		c := aiAdapters.NewNoopClassifier()
		classifier, responder = c, c
		logger.Warn().Msg("no AI key configured; using the noop backend")
	}

	// ---- Place search ----
	var placeSearch adapter.PlaceSearch
	if cfg.Places.APIKey != "" {
		placeSearch, err = placesAdapters.NewGooglePlaces(cfg.Places.APIKey, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("google places init failed")
		}
	} else {
		logger.Warn().Msg("places.api_key not set; place lookups will fail gracefully")
	}

	// ---- Telegram ----
	sender, err := tele.NewSender(cfg.Bot.Token, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram sender init failed")
	}
	senders := adapter.NewSenderRegistry(map[model.Platform]adapter.MessageSender{
		model.PlatformTelegram: sender,
	})

	// ---- Router + handlers ----
	handlers := map[model.ContentType]application.ContentHandler{
		model.ContentTypePlaceName: application.NewPlaceHandler(placeSearch, application.PlaceHandlerConfig{
			Language:   cfg.Places.Language,
			MaxResults: cfg.Places.MaxResults,
		}, logger),
		model.ContentTypeConversation:  application.NewConversationHandler(responder, memoryUC, logger),
		model.ContentTypeInstagramLink: application.NewLinkHandler(model.ContentTypeInstagramLink, jobRepo, logger),
		model.ContentTypeTikTokLink:    application.NewLinkHandler(model.ContentTypeTikTokLink, jobRepo, logger),
		model.ContentTypeOtherLink:     application.NewOtherLinkHandler(),
	}
	router := application.NewClassificationRouter(sessionUC, memoryUC, requestRepo, classifier, handlers, logger)

	// ---- HTTP server ----
	server := httpapi.NewServer(cfg, router, sessionUC, jobRepo, pg.NewTxManager(pool), senders, rateLimiter, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
