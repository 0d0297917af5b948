// File: internal/infra/worker/mocks_test.go
package worker

import (
	"context"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/domain/ports/repository"
	"omnimap-agent/internal/usecase"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type mockJobRepo struct {
	InsertFunc          func(ctx context.Context, tx repository.Tx, job *model.Job) error
	FetchNextQueuedFunc func(ctx context.Context, types []model.JobType) (*model.Job, error)
	ClaimFunc           func(ctx context.Context, jobID string) (*model.Job, error)
	UpdateFunc          func(ctx context.Context, tx repository.Tx, jobID string, patch model.JobPatch) error
	FindByIDFunc        func(ctx context.Context, tx repository.Tx, jobID string) (*model.Job, error)
}

var _ repository.JobRepository = (*mockJobRepo)(nil)

func (m *mockJobRepo) Insert(ctx context.Context, tx repository.Tx, job *model.Job) error {
	return m.InsertFunc(ctx, tx, job)
}

func (m *mockJobRepo) FetchNextQueued(ctx context.Context, types []model.JobType) (*model.Job, error) {
	return m.FetchNextQueuedFunc(ctx, types)
}

func (m *mockJobRepo) Claim(ctx context.Context, jobID string) (*model.Job, error) {
	return m.ClaimFunc(ctx, jobID)
}

func (m *mockJobRepo) Update(ctx context.Context, tx repository.Tx, jobID string, patch model.JobPatch) error {
	return m.UpdateFunc(ctx, tx, jobID, patch)
}

func (m *mockJobRepo) FindByID(ctx context.Context, tx repository.Tx, jobID string) (*model.Job, error) {
	return m.FindByIDFunc(ctx, tx, jobID)
}

type mockSessionLifecycle struct {
	FindByIDFunc func(ctx context.Context, id string) (*model.Session, error)
}

var _ usecase.SessionLifecycle = (*mockSessionLifecycle)(nil)

func (m *mockSessionLifecycle) GetOrCreateActive(_ context.Context, _ model.Platform, _, _ string, _ map[string]any) (*model.Session, bool, error) {
	panic("not used by the worker")
}

func (m *mockSessionLifecycle) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockSender struct {
	SendFunc func(ctx context.Context, msg adapter.OutgoingMessage) (adapter.SendResult, error)
	sent     []adapter.OutgoingMessage
}

var _ adapter.MessageSender = (*mockSender)(nil)

func (m *mockSender) Send(ctx context.Context, msg adapter.OutgoingMessage) (adapter.SendResult, error) {
	m.sent = append(m.sent, msg)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return adapter.SendResult{Success: true, MessageID: "sent-1"}, nil
}

type mockMemory struct {
	AssistantSaves []string
}

var _ usecase.ConversationMemory = (*mockMemory)(nil)

func (m *mockMemory) LoadContext(_ context.Context, sessionID string, isNewContext bool) *model.ConversationContext {
	return &model.ConversationContext{SessionID: sessionID, IsNewContext: isNewContext}
}

func (m *mockMemory) SaveUserMessage(_ context.Context, _, _ string, _ map[string]any) {}

func (m *mockMemory) SaveAssistantMessage(_ context.Context, _ string, text string, _ map[string]any) {
	m.AssistantSaves = append(m.AssistantSaves, text)
}

func (m *mockMemory) RenderPrompt(_ *model.ConversationContext) string { return "" }
