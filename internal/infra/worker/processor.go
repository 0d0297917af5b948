// File: internal/infra/worker/processor.go
package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/usecase"
)

// Outcome is what a successful run hands back to the worker: the job's
// result payload plus any follow-up jobs to enqueue. Follow-ups go through
// the worker, never straight into the repository, so a chained job is only
// visible once its parent is terminal.
type Outcome struct {
	Result    map[string]any
	FollowUps []*model.Job
}

// Processor executes one claimed job. A non-nil error marks the job
// failed. Processors must not touch job status or the queue themselves.
type Processor interface {
	Type() model.JobType
	Process(ctx context.Context, job *model.Job) (*Outcome, error)
}

// resolvePlatform picks the delivery platform: explicit payload hint, then
// the linked session's platform, then the configured default.
func resolvePlatform(ctx context.Context, job *model.Job, sessions usecase.SessionLifecycle, fallback model.Platform, log *zerolog.Logger) model.Platform {
	if hint := job.PlatformHint(); hint != "" {
		return model.ParsePlatform(hint, fallback)
	}
	if job.SessionID != "" {
		if s, err := sessions.FindByID(ctx, job.SessionID); err == nil {
			return s.Platform
		} else {
			log.Warn().Err(err).Str("session_id", job.SessionID).Msg("platform lookup via session failed")
		}
	}
	return fallback
}

// --- greeting -----------------------------------------------------------

type greetingProcessor struct {
	memory usecase.ConversationMemory
	log    *zerolog.Logger
}

var _ Processor = (*greetingProcessor)(nil)

// NewGreetingProcessor composes a welcome message, records it as an
// assistant memory turn, and chains a notify_user job that actually
// delivers it. Delivery stays in the queue so greeting and notify share
// the same audit trail as every other async message.
func NewGreetingProcessor(memory usecase.ConversationMemory, log *zerolog.Logger) *greetingProcessor {
	return &greetingProcessor{memory: memory, log: log}
}

func (p *greetingProcessor) Type() model.JobType { return model.JobTypeGreeting }

func (p *greetingProcessor) Process(ctx context.Context, job *model.Job) (*Outcome, error) {
	name := ""
	if job.Payload != nil {
		if v, ok := job.Payload["display_name"].(string); ok {
			name = v
		} else if v, ok := job.Payload["username"].(string); ok {
			name = v
		}
	}

	greeting := "Hey there! 👋 I'm your map assistant. Send me a place name or a link and I'll save it to your map."
	if strings.TrimSpace(name) != "" {
		greeting = fmt.Sprintf("Hey %s! 👋 I'm your map assistant. Send me a place name or a link and I'll save it to your map.", strings.TrimSpace(name))
	}

	if job.SessionID != "" {
		p.memory.SaveAssistantMessage(ctx, job.SessionID, greeting, map[string]any{"kind": "greeting"})
	}

	followUp := &model.Job{
		Type:        model.JobTypeNotifyUser,
		ChatID:      job.ChatID,
		SessionID:   job.SessionID,
		ParentJobID: job.ID,
		Payload: map[string]any{
			"message": greeting,
		},
	}
	if hint := job.PlatformHint(); hint != "" {
		followUp.Payload["platform"] = hint
	}

	return &Outcome{
		Result:    map[string]any{"greeting": greeting},
		FollowUps: []*model.Job{followUp},
	}, nil
}

// --- notify_user --------------------------------------------------------

type notifyProcessor struct {
	sessions        usecase.SessionLifecycle
	senders         *adapter.SenderRegistry
	defaultPlatform model.Platform
	log             *zerolog.Logger
}

var _ Processor = (*notifyProcessor)(nil)

func NewNotifyProcessor(sessions usecase.SessionLifecycle, senders *adapter.SenderRegistry, defaultPlatform model.Platform, log *zerolog.Logger) *notifyProcessor {
	return &notifyProcessor{sessions: sessions, senders: senders, defaultPlatform: defaultPlatform, log: log}
}

func (p *notifyProcessor) Type() model.JobType { return model.JobTypeNotifyUser }

func (p *notifyProcessor) Process(ctx context.Context, job *model.Job) (*Outcome, error) {
	message := ""
	if job.Payload != nil {
		message, _ = job.Payload["message"].(string)
	}
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: notify_user payload has no message", domain.ErrInvalidArgument)
	}
	if job.ChatID == "" {
		return nil, fmt.Errorf("%w: notify_user job has no chat id", domain.ErrInvalidArgument)
	}

	platform := resolvePlatform(ctx, job, p.sessions, p.defaultPlatform, p.log)
	sender, err := p.senders.Get(platform)
	if err != nil {
		return nil, fmt.Errorf("no sender for platform %q: %w", platform, err)
	}

	res, err := sender.Send(ctx, adapter.OutgoingMessage{
		ChatID:   job.ChatID,
		Text:     message,
		Platform: platform,
	})
	if err != nil {
		return nil, fmt.Errorf("send on %s: %w", platform, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("send on %s rejected: %s", platform, res.Error)
	}

	return &Outcome{Result: map[string]any{
		"platform":   string(platform),
		"message_id": res.MessageID,
	}}, nil
}

// --- echo ---------------------------------------------------------------

// echoProcessor confirms a queued message back to the user who sent it.
// It exercises the whole pipeline, queue through delivery, which is why
// a failed send fails the job instead of being swallowed.
type echoProcessor struct {
	sessions        usecase.SessionLifecycle
	senders         *adapter.SenderRegistry
	defaultPlatform model.Platform
	log             *zerolog.Logger
}

var _ Processor = (*echoProcessor)(nil)

func NewEchoProcessor(sessions usecase.SessionLifecycle, senders *adapter.SenderRegistry, defaultPlatform model.Platform, log *zerolog.Logger) *echoProcessor {
	return &echoProcessor{sessions: sessions, senders: senders, defaultPlatform: defaultPlatform, log: log}
}

func (p *echoProcessor) Type() model.JobType { return model.JobTypeEcho }

func (p *echoProcessor) Process(ctx context.Context, job *model.Job) (*Outcome, error) {
	message := ""
	if job.Payload != nil {
		message, _ = job.Payload["message"].(string)
	}
	if job.ChatID == "" {
		return nil, fmt.Errorf("%w: echo job has no chat id", domain.ErrInvalidArgument)
	}

	platform := resolvePlatform(ctx, job, p.sessions, p.defaultPlatform, p.log)
	sender, err := p.senders.Get(platform)
	if err != nil {
		return nil, fmt.Errorf("no sender for platform %q: %w", platform, err)
	}

	res, err := sender.Send(ctx, adapter.OutgoingMessage{
		ChatID:   job.ChatID,
		Text:     fmt.Sprintf("Background job completed! Original message: %s", message),
		Platform: platform,
	})
	if err != nil {
		return nil, fmt.Errorf("send on %s: %w", platform, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("send on %s rejected: %s", platform, res.Error)
	}

	return &Outcome{Result: map[string]any{
		"echo":       message,
		"platform":   string(platform),
		"message_id": res.MessageID,
	}}, nil
}
