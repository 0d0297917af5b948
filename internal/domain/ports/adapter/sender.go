package adapter

import (
	"context"

	"omnimap-agent/internal/domain"
	"omnimap-agent/internal/domain/model"
)

// OutgoingMessage is a platform-agnostic outbound message.
type OutgoingMessage struct {
	ChatID    string
	Text      string
	Platform  model.Platform
	ParseMode string // "HTML" | "MarkdownV2" | "" (plain)
}

type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

// MessageSender delivers one message on one platform.
type MessageSender interface {
	Send(ctx context.Context, msg OutgoingMessage) (SendResult, error)
}

// SenderRegistry maps platforms to their senders. It is built once at
// process start and immutable afterwards; no global registration.
type SenderRegistry struct {
	senders map[model.Platform]MessageSender
}

func NewSenderRegistry(senders map[model.Platform]MessageSender) *SenderRegistry {
	copied := make(map[model.Platform]MessageSender, len(senders))
	for p, s := range senders {
		copied[p] = s
	}
	return &SenderRegistry{senders: copied}
}

func (r *SenderRegistry) Get(p model.Platform) (MessageSender, error) {
	s, ok := r.senders[p]
	if !ok {
		return nil, domain.ErrNoSender
	}
	return s, nil
}

func (r *SenderRegistry) Platforms() []model.Platform {
	out := make([]model.Platform, 0, len(r.senders))
	for p := range r.senders {
		out = append(out, p)
	}
	return out
}
