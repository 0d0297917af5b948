// File: internal/application/mocks_test.go
package application

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

type mockSessionLifecycle struct {
	GetOrCreateActiveFunc func(ctx context.Context, platform model.Platform, platformUserID, platformChatID string, metadata map[string]any) (*model.Session, bool, error)
	FindByIDFunc          func(ctx context.Context, id string) (*model.Session, error)
}

var _ usecase.SessionLifecycle = (*mockSessionLifecycle)(nil)

func (m *mockSessionLifecycle) GetOrCreateActive(ctx context.Context, platform model.Platform, platformUserID, platformChatID string, metadata map[string]any) (*model.Session, bool, error) {
	return m.GetOrCreateActiveFunc(ctx, platform, platformUserID, platformChatID, metadata)
}

func (m *mockSessionLifecycle) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.FindByIDFunc(ctx, id)
}

// mockMemory records saves and serves a fixed context.
type mockMemory struct {
	Context    *model.ConversationContext
	Transcript string

	UserSaves      []string
	AssistantSaves []string
}

var _ usecase.ConversationMemory = (*mockMemory)(nil)

func (m *mockMemory) LoadContext(_ context.Context, sessionID string, isNewContext bool) *model.ConversationContext {
	if m.Context != nil {
		return m.Context
	}
	return &model.ConversationContext{SessionID: sessionID, IsNewContext: isNewContext}
}

func (m *mockMemory) SaveUserMessage(_ context.Context, _ string, text string, _ map[string]any) {
	m.UserSaves = append(m.UserSaves, text)
}

func (m *mockMemory) SaveAssistantMessage(_ context.Context, _ string, text string, _ map[string]any) {
	m.AssistantSaves = append(m.AssistantSaves, text)
}

func (m *mockMemory) RenderPrompt(_ *model.ConversationContext) string {
	return m.Transcript
}

type mockRequestRepo struct {
	InsertFunc   func(ctx context.Context, tx repository.Tx, r *model.IncomingRequest) error
	UpdateFunc   func(ctx context.Context, tx repository.Tx, id string, patch model.RequestPatch) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.IncomingRequest, error)
}

var _ repository.IncomingRequestRepository = (*mockRequestRepo)(nil)

func (m *mockRequestRepo) Insert(ctx context.Context, tx repository.Tx, r *model.IncomingRequest) error {
	return m.InsertFunc(ctx, tx, r)
}

func (m *mockRequestRepo) Update(ctx context.Context, tx repository.Tx, id string, patch model.RequestPatch) error {
	return m.UpdateFunc(ctx, tx, id, patch)
}

func (m *mockRequestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.IncomingRequest, error) {
	return m.FindByIDFunc(ctx, tx, id)
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

type mockClassifier struct {
	ClassifyFunc func(ctx context.Context, text, transcript string) (*model.Classification, error)
}

var _ adapter.Classifier = (*mockClassifier)(nil)

func (m *mockClassifier) Classify(ctx context.Context, text, transcript string) (*model.Classification, error) {
	return m.ClassifyFunc(ctx, text, transcript)
}

type mockResponder struct {
	RespondFunc func(ctx context.Context, text, transcript string) (string, error)
}

var _ adapter.ChatResponder = (*mockResponder)(nil)

func (m *mockResponder) Respond(ctx context.Context, text, transcript string) (string, error) {
	return m.RespondFunc(ctx, text, transcript)
}

type mockPlaceSearch struct {
	SearchFunc func(ctx context.Context, q model.PlaceQuery) ([]model.PlaceResult, error)
}

var _ adapter.PlaceSearch = (*mockPlaceSearch)(nil)

func (m *mockPlaceSearch) Search(ctx context.Context, q model.PlaceQuery) ([]model.PlaceResult, error) {
	return m.SearchFunc(ctx, q)
}

// mockHandler is a trivial handler returning a fixed result.
type mockHandler struct {
	name   string
	result *model.HandlerResult
	calls  int
	lastIn HandlerInput
}

var _ ContentHandler = (*mockHandler)(nil)

func (m *mockHandler) Name() string { return m.name }

func (m *mockHandler) Handle(_ context.Context, in HandlerInput) *model.HandlerResult {
	m.calls++
	m.lastIn = in
	return m.result
}
