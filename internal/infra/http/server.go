// File: internal/infra/http/server.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"omnimap-agent/internal/application"
	"omnimap-agent/internal/config"
	"omnimap-agent/internal/domain"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/domain/ports/repository"
	"omnimap-agent/internal/infra/adapters/telegram"
	"omnimap-agent/internal/infra/logging"
	red "omnimap-agent/internal/infra/redis"
	"omnimap-agent/internal/usecase"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Server exposes the inbound surface: the platform webhook, health,
// metrics and the admin job-replay endpoint.
type Server struct {
	cfg      *config.Config
	router   *application.ClassificationRouter
	sessions usecase.SessionLifecycle
	jobs     repository.JobRepository
	txm      repository.TransactionManager
	senders  *adapter.SenderRegistry
	limiter  *red.RateLimiter
	auth     *AdminAuth
	log      *zerolog.Logger

	srv *http.Server
}

func NewServer(
	cfg *config.Config,
	router *application.ClassificationRouter,
	sessions usecase.SessionLifecycle,
	jobs repository.JobRepository,
	txm repository.TransactionManager,
	senders *adapter.SenderRegistry,
	limiter *red.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		cfg:      cfg,
		router:   router,
		sessions: sessions,
		jobs:     jobs,
		txm:      txm,
		senders:  senders,
		limiter:  limiter,
		auth:     NewAdminAuth(cfg.HTTP.AdminJWTKey, 30*time.Minute),
		log:      logger,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/webhook/telegram", s.handleTelegramWebhook)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.auth.Guard)
		r.Post("/jobs/{id}/replay", s.handleJobReplay)
	})

	return Chain(r, TraceID(), RequestLog(s.log), Recover(s.log), Timeout(30*time.Second))
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler: s.Handler(),
	}
	s.log.Info().Int("port", s.cfg.HTTP.Port).Msg("http server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// handleTelegramWebhook always answers 200 once the update is decoded:
// Telegram retries non-2xx responses and a processing failure is not
// something a retry would fix.
func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if secret := s.cfg.Bot.WebhookSecret; secret != "" && r.Header.Get(secretTokenHeader) != secret {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	update, err := telegram.DecodeUpdate(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	req, ok := telegram.ToUnifiedRequest(update)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx := logging.WithPlatform(r.Context(), string(req.Platform))
	ctx = logging.WithChatID(ctx, req.PlatformChatID)
	log := logging.With(ctx, s.log)

	if s.limiter != nil {
		key := red.InboundMessageKey(string(req.Platform), req.PlatformUserID)
		window := time.Duration(s.cfg.HTTP.RateWindowSec) * time.Second
		allowed, err := s.limiter.Allow(ctx, key, s.cfg.HTTP.RateLimit, window)
		if err != nil {
			// Rate limiting is protective, not load-bearing.
			log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			log.Info().Str("user_id", req.PlatformUserID).Msg("rate limited")
			w.WriteHeader(http.StatusOK)
			return
		}
	}

	switch telegram.BotCommand(update) {
	case "start", "hello":
		s.enqueueGreeting(ctx, req, log)
		w.WriteHeader(http.StatusOK)
		return
	}

	result := s.router.ProcessInbound(ctx, req, "")
	if result.Message != "" {
		s.deliver(ctx, req, result.Message, log)
	}
	w.WriteHeader(http.StatusOK)
}

// enqueueGreeting turns a start-style command into a greeting job. The
// worker composes the welcome and chains delivery.
func (s *Server) enqueueGreeting(ctx context.Context, req *model.UnifiedRequest, log *zerolog.Logger) {
	job := &model.Job{
		Type:   model.JobTypeGreeting,
		ChatID: req.PlatformChatID,
		Payload: map[string]any{
			"platform":     string(req.Platform),
			"username":     req.SenderUsername,
			"display_name": req.SenderDisplayName,
		},
	}

	session, _, err := s.sessions.GetOrCreateActive(ctx, req.Platform, req.PlatformUserID, req.PlatformChatID, req.Metadata)
	if err != nil {
		log.Warn().Err(err).Msg("session resolution for greeting failed, queueing without")
	} else {
		job.SessionID = session.ID
	}

	if err := s.jobs.Insert(ctx, nil, job); err != nil {
		log.Error().Err(err).Msg("greeting job enqueue failed")
		s.deliver(ctx, req, "Something went wrong, please try again later.", log)
		return
	}
	log.Info().Str("job_id", job.ID).Msg("greeting job queued")
}

func (s *Server) deliver(ctx context.Context, req *model.UnifiedRequest, text string, log *zerolog.Logger) {
	sender, err := s.senders.Get(req.Platform)
	if err != nil {
		log.Error().Err(err).Str("platform", string(req.Platform)).Msg("no sender for reply")
		return
	}
	if _, err := sender.Send(ctx, adapter.OutgoingMessage{
		ChatID:   req.PlatformChatID,
		Text:     text,
		Platform: req.Platform,
	}); err != nil {
		log.Error().Err(err).Msg("reply delivery failed")
	}
}

// handleJobReplay clones a failed job into a fresh queued one. The
// original row is never touched; parent_job_id links the replay to it.
// The status check and the clone insert run in one transaction so the
// decision is made against a consistent snapshot of the original row.
func (s *Server) handleJobReplay(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	var replay *model.Job
	err := s.txm.WithTx(r.Context(), pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		original, err := s.jobs.FindByID(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if original.Status != model.JobStatusFailed {
			return domain.ErrJobNotFailed
		}
		replay = &model.Job{
			Type:        original.Type,
			ChatID:      original.ChatID,
			SessionID:   original.SessionID,
			ParentJobID: original.ID,
			Payload:     original.Payload,
		}
		return s.jobs.Insert(ctx, tx, replay)
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "job not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrJobNotFailed):
		http.Error(w, "only failed jobs can be replayed", http.StatusConflict)
		return
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.log.Info().Str("job_id", jobID).Str("replay_id", replay.ID).Msg("job replayed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"job_id":    replay.ID,
		"replay_of": jobID,
	})
}
