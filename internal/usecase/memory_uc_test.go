// File: internal/usecase/memory_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
)

func TestLoadContext_NewContextSkipsRead(t *testing.T) {
	memories := &mockMemoryRepo{
		ListRecentFunc: func(_ context.Context, _ repository.Tx, _ string, _ int) ([]model.MemoryEntry, error) {
			t.Fatal("must not hit the repository for a fresh context")
			return nil, nil
		},
	}
	uc := NewConversationMemory(memories, 20, 10, nopLogger())

	cc := uc.LoadContext(context.Background(), "sess-1", true)
	if cc.HasContext() {
		t.Error("fresh context must be empty")
	}
	if !cc.IsNewContext {
		t.Error("IsNewContext flag lost")
	}
}

func TestLoadContext_ReturnsChronologicalOrder(t *testing.T) {
	// repository contract: newest first
	memories := &mockMemoryRepo{
		ListRecentFunc: func(_ context.Context, _ repository.Tx, sessionID string, limit int) ([]model.MemoryEntry, error) {
			if sessionID != "sess-1" {
				t.Errorf("queried session %q", sessionID)
			}
			if limit != 20 {
				t.Errorf("limit = %d, want 20", limit)
			}
			return []model.MemoryEntry{
				{Role: model.MemoryRoleAssistant, Content: map[string]any{"text": "third"}},
				{Role: model.MemoryRoleUser, Content: map[string]any{"text": "second"}},
				{Role: model.MemoryRoleUser, Content: map[string]any{"text": "first"}},
			}, nil
		},
	}
	uc := NewConversationMemory(memories, 20, 10, nopLogger())

	cc := uc.LoadContext(context.Background(), "sess-1", false)
	if !cc.HasContext() {
		t.Fatal("expected a populated context")
	}
	got := []string{cc.Messages[0].Text(), cc.Messages[1].Text(), cc.Messages[2].Text()}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestLoadContext_DegradesToEmptyOnError(t *testing.T) {
	memories := &mockMemoryRepo{
		ListRecentFunc: func(_ context.Context, _ repository.Tx, _ string, _ int) ([]model.MemoryEntry, error) {
			return nil, errors.New("timeout")
		},
	}
	uc := NewConversationMemory(memories, 20, 10, nopLogger())

	cc := uc.LoadContext(context.Background(), "sess-1", false)
	if cc.HasContext() {
		t.Error("a failed read must degrade to an empty window")
	}
	if cc.SessionID != "sess-1" {
		t.Errorf("session id lost: %q", cc.SessionID)
	}
}

func TestSaveUserMessage_SwallowsErrors(t *testing.T) {
	var inserted *model.MemoryEntry
	memories := &mockMemoryRepo{
		InsertFunc: func(_ context.Context, _ repository.Tx, e *model.MemoryEntry) error {
			inserted = e
			return errors.New("constraint violation")
		},
	}
	uc := NewConversationMemory(memories, 20, 10, nopLogger())

	// must not panic or surface the error
	uc.SaveUserMessage(context.Background(), "sess-1", "hello", map[string]any{"platform": "telegram"})

	if inserted == nil {
		t.Fatal("insert never attempted")
	}
	if inserted.Role != model.MemoryRoleUser {
		t.Errorf("role = %q", inserted.Role)
	}
	if inserted.Text() != "hello" {
		t.Errorf("text = %q", inserted.Text())
	}
	if inserted.Content["platform"] != "telegram" {
		t.Errorf("metadata not merged: %v", inserted.Content)
	}
}

func TestSaveAssistantMessage_MetaCannotShadowText(t *testing.T) {
	var inserted *model.MemoryEntry
	memories := &mockMemoryRepo{
		InsertFunc: func(_ context.Context, _ repository.Tx, e *model.MemoryEntry) error {
			inserted = e
			return nil
		},
	}
	uc := NewConversationMemory(memories, 20, 10, nopLogger())

	uc.SaveAssistantMessage(context.Background(), "sess-1", "real reply", map[string]any{"text": "spoofed"})

	if inserted.Text() != "real reply" {
		t.Errorf("text = %q, want the message text", inserted.Text())
	}
	if inserted.Role != model.MemoryRoleAssistant {
		t.Errorf("role = %q", inserted.Role)
	}
}

func TestSave_KindMetaLandsInKindColumn(t *testing.T) {
	var inserted *model.MemoryEntry
	memories := &mockMemoryRepo{
		InsertFunc: func(_ context.Context, _ repository.Tx, e *model.MemoryEntry) error {
			inserted = e
			return nil
		},
	}
	uc := NewConversationMemory(memories, 20, 10, nopLogger())

	uc.SaveAssistantMessage(context.Background(), "sess-1", "welcome!", map[string]any{"kind": "greeting"})

	if inserted.Kind != "greeting" {
		t.Errorf("kind = %q, want %q", inserted.Kind, "greeting")
	}
	if _, ok := inserted.Content["kind"]; ok {
		t.Errorf("kind leaked into content: %v", inserted.Content)
	}
	if inserted.Text() != "welcome!" {
		t.Errorf("text = %q", inserted.Text())
	}
}

func TestSave_DefaultKindIsMessage(t *testing.T) {
	var inserted *model.MemoryEntry
	memories := &mockMemoryRepo{
		InsertFunc: func(_ context.Context, _ repository.Tx, e *model.MemoryEntry) error {
			inserted = e
			return nil
		},
	}
	uc := NewConversationMemory(memories, 20, 10, nopLogger())

	uc.SaveUserMessage(context.Background(), "sess-1", "hello", nil)

	if inserted.Kind != "message" {
		t.Errorf("kind = %q, want %q", inserted.Kind, "message")
	}
}

func TestRenderPrompt_CapsAndLabels(t *testing.T) {
	uc := NewConversationMemory(&mockMemoryRepo{}, 20, 2, nopLogger())

	cc := &model.ConversationContext{
		SessionID: "sess-1",
		Messages: []model.MemoryEntry{
			{Role: model.MemoryRoleUser, Content: map[string]any{"text": "dropped by the cap"}},
			{Role: model.MemoryRoleUser, Content: map[string]any{"text": "where can I eat?"}},
			{Role: model.MemoryRoleAssistant, Content: map[string]any{"text": "Try the place on 5th."}},
		},
	}

	got := uc.RenderPrompt(cc)
	want := "User: where can I eat?\nAssistant: Try the place on 5th."
	if got != want {
		t.Errorf("prompt = %q, want %q", got, want)
	}
}

func TestRenderPrompt_EmptyContext(t *testing.T) {
	uc := NewConversationMemory(&mockMemoryRepo{}, 20, 10, nopLogger())

	if got := uc.RenderPrompt(&model.ConversationContext{SessionID: "s", IsNewContext: true}); got != "" {
		t.Errorf("prompt for a fresh context = %q, want empty", got)
	}

	cc := &model.ConversationContext{
		SessionID: "s",
		Messages:  []model.MemoryEntry{{Role: model.MemoryRoleUser, Content: map[string]any{"kind": "sticker"}}},
	}
	if got := uc.RenderPrompt(cc); got != "" {
		t.Errorf("textless entries must render nothing, got %q", got)
	}
}
