// File: cmd/worker/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"omnimap-agent/internal/config"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/domain/ports/repository"
	tele "omnimap-agent/internal/infra/adapters/telegram"
	pg "omnimap-agent/internal/infra/db/postgres"
	"omnimap-agent/internal/infra/logging"
	"omnimap-agent/internal/infra/metrics"
	red "omnimap-agent/internal/infra/redis"
	"omnimap-agent/internal/infra/worker"
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
	metrics.MustRegister()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	pg.StartPoolStatsReporter(ctx, pool, 30*time.Second)

	var sessionCache *red.SessionCache
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer redisClient.Close()
		sessionCache = red.NewSessionCache(redisClient, cfg.Redis.TTL)
	}

	jobRepo := pg.NewJobRepo(pool)
	memoryRepo := pg.NewMemoryRepo(pool)

	var sessions repository.SessionRepository = pg.NewSessionRepo(pool)
	if sessionCache != nil {
		sessions = pg.NewSessionRepoCacheDecorator(sessions, sessionCache)
	}

	sessionUC := usecase.NewSessionLifecycle(sessions, memoryRepo, cfg.Session.InactivityThreshold, logger)
	memoryUC := usecase.NewConversationMemory(memoryRepo, cfg.Session.ContextLimit, cfg.Session.PromptMaxMessages, logger)

	sender, err := tele.NewSender(cfg.Bot.Token, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram sender init failed")
	}
	senders := adapter.NewSenderRegistry(map[model.Platform]adapter.MessageSender{
		model.PlatformTelegram: sender,
	})

	defaultPlatform := model.ParsePlatform(cfg.Worker.DefaultPlatform, model.PlatformTelegram)
	processors := []worker.Processor{
		worker.NewGreetingProcessor(memoryUC, logger),
		worker.NewNotifyProcessor(sessionUC, senders, defaultPlatform, logger),
		worker.NewEchoProcessor(sessionUC, senders, defaultPlatform, logger),
	}

	w := worker.NewJobWorker(jobRepo, processors, cfg.Worker.PollInterval, logger)

	if port := cfg.Worker.MetricsPort; port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			addr := fmt.Sprintf(":%d", port)
			logger.Info().Str("addr", addr).Msg("worker metrics listening")
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error().Err(err).Msg("worker metrics listener stopped")
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	logger.Info().Dur("poll_interval", cfg.Worker.PollInterval).Msg("job worker started")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn().Msg("worker did not stop in time")
	}
}
