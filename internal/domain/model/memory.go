package model

import (
	"time"
)

type MemoryRole string

const (
	MemoryRoleUser      MemoryRole = "user"
	MemoryRoleAssistant MemoryRole = "assistant"
)

// MemoryEntry is one turn of session memory. Entries are append-only;
// archiving (on session expiry) is the only mutation and excludes the
// entry from future context windows without physically removing it.
type MemoryEntry struct {
	ID        string
	SessionID string
	Role      MemoryRole
	Kind      string
	Content   map[string]any
	Archived  bool
	CreatedAt time.Time
}

// Text returns the content's text field, or "" for entries that carry
// no renderable text.
func (e *MemoryEntry) Text() string {
	if e.Content == nil {
		return ""
	}
	if t, ok := e.Content["text"].(string); ok {
		return t
	}
	return ""
}

// ConversationContext is the bounded window of recent turns handed to the
// classifier and handlers. Messages are in chronological order.
type ConversationContext struct {
	SessionID    string
	IsNewContext bool
	Messages     []MemoryEntry
}

// HasContext is true only when the context survived the session boundary
// and actually contains at least one message.
func (c *ConversationContext) HasContext() bool {
	return c != nil && !c.IsNewContext && len(c.Messages) > 0
}
