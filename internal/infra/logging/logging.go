// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/config"
)

// New builds the process-wide base logger. Format "console" (forced in
// dev) renders human-readable lines; anything else emits JSON. Sampling
// thins info-level noise in production without touching warnings and
// errors.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var sink = zerolog.New(os.Stdout)
	if dev || strings.EqualFold(cfg.Format, "console") {
		sink = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	logger := sink.With().Timestamp().Logger()

	if cfg.Sampling && !dev {
		logger = logger.Sample(zerolog.LevelSampler{
			InfoSampler: &zerolog.BurstSampler{Burst: 50, Period: time.Second},
		})
	}
	return &logger
}

// fields travels with the request context as one value, so a single
// lookup in With recovers everything accumulated along the way.
type fields struct {
	traceID   string
	sessionID string
	platform  string
	chatID    string
}

type fieldsKey struct{}

func update(ctx context.Context, fn func(*fields)) context.Context {
	f, _ := ctx.Value(fieldsKey{}).(fields)
	fn(&f)
	return context.WithValue(ctx, fieldsKey{}, f)
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return update(ctx, func(f *fields) { f.traceID = id })
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return update(ctx, func(f *fields) { f.sessionID = id })
}

func WithPlatform(ctx context.Context, platform string) context.Context {
	return update(ctx, func(f *fields) { f.platform = platform })
}

func WithChatID(ctx context.Context, id string) context.Context {
	return update(ctx, func(f *fields) { f.chatID = id })
}

// With derives a logger carrying whatever identity fields the context has
// accumulated. Empty fields are omitted rather than logged blank.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	f, ok := ctx.Value(fieldsKey{}).(fields)
	if !ok {
		return base
	}
	lc := base.With()
	if f.traceID != "" {
		lc = lc.Str("trace_id", f.traceID)
	}
	if f.sessionID != "" {
		lc = lc.Str("session_id", f.sessionID)
	}
	if f.platform != "" {
		lc = lc.Str("platform", f.platform)
	}
	if f.chatID != "" {
		lc = lc.Str("chat_id", f.chatID)
	}
	logger := lc.Logger()
	return &logger
}
