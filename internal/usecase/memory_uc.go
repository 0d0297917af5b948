// File: internal/usecase/memory_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
	"omnimap-agent/internal/infra/metrics"
)

var _ ConversationMemory = (*memoryUC)(nil)

// ConversationMemory is the bounded short-term memory of a session.
// Reads degrade to an empty context and writes are best-effort: memory
// must never block or fail message processing.
type ConversationMemory interface {
	LoadContext(ctx context.Context, sessionID string, isNewContext bool) *model.ConversationContext
	SaveUserMessage(ctx context.Context, sessionID, text string, meta map[string]any)
	SaveAssistantMessage(ctx context.Context, sessionID, text string, meta map[string]any)
	RenderPrompt(cc *model.ConversationContext) string
}

type memoryUC struct {
	memories     repository.MemoryRepository
	contextLimit int
	promptMax    int
	log          *zerolog.Logger
}

func NewConversationMemory(memories repository.MemoryRepository, contextLimit, promptMax int, log *zerolog.Logger) *memoryUC {
	if contextLimit <= 0 {
		contextLimit = 20
	}
	if promptMax <= 0 {
		promptMax = 10
	}
	return &memoryUC{
		memories:     memories,
		contextLimit: contextLimit,
		promptMax:    promptMax,
		log:          log,
	}
}

// LoadContext fetches the newest non-archived entries and reverses them
// into chronological order. A fresh context (isNewContext) skips the read
// entirely; a failed read is logged and returns an empty window.
func (u *memoryUC) LoadContext(ctx context.Context, sessionID string, isNewContext bool) *model.ConversationContext {
	cc := &model.ConversationContext{SessionID: sessionID, IsNewContext: isNewContext}
	if isNewContext || sessionID == "" {
		return cc
	}

	entries, err := u.memories.ListRecent(ctx, nil, sessionID, u.contextLimit)
	if err != nil {
		u.log.Warn().Err(err).Str("session_id", sessionID).Msg("context load failed, continuing without memory")
		return cc
	}

	// newest-first from the repository -> chronological for prompts
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	cc.Messages = entries
	return cc
}

func (u *memoryUC) SaveUserMessage(ctx context.Context, sessionID, text string, meta map[string]any) {
	u.save(ctx, sessionID, model.MemoryRoleUser, text, meta)
}

func (u *memoryUC) SaveAssistantMessage(ctx context.Context, sessionID, text string, meta map[string]any) {
	u.save(ctx, sessionID, model.MemoryRoleAssistant, text, meta)
}

func (u *memoryUC) save(ctx context.Context, sessionID string, role model.MemoryRole, text string, meta map[string]any) {
	if sessionID == "" {
		return
	}
	// A "kind" meta key classifies the entry and lands in its own column,
	// not in the content blob.
	kind := "message"
	content := map[string]any{"text": text}
	for k, v := range meta {
		switch k {
		case "text":
			continue
		case "kind":
			if s, ok := v.(string); ok && s != "" {
				kind = s
				continue
			}
		}
		content[k] = v
	}
	e := &model.MemoryEntry{
		SessionID: sessionID,
		Role:      role,
		Kind:      kind,
		Content:   content,
	}
	if err := u.memories.Insert(ctx, nil, e); err != nil {
		metrics.IncMemorySaveFailure()
		u.log.Warn().Err(err).Str("session_id", sessionID).Str("role", string(role)).Msg("memory save failed")
	}
}

// RenderPrompt flattens the context into "User:"/"Assistant:" lines for
// LLM prompts. Only the most recent promptMax messages are rendered and
// textless entries are skipped.
func (u *memoryUC) RenderPrompt(cc *model.ConversationContext) string {
	if !cc.HasContext() {
		return ""
	}
	msgs := cc.Messages
	if len(msgs) > u.promptMax {
		msgs = msgs[len(msgs)-u.promptMax:]
	}

	var b strings.Builder
	for _, m := range msgs {
		text := m.Text()
		if text == "" {
			continue
		}
		label := "User"
		if m.Role == model.MemoryRoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, text)
	}
	return strings.TrimRight(b.String(), "\n")
}
