// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
)

type mockSessionRepo struct {
	CreateFunc             func(ctx context.Context, tx repository.Tx, s *model.Session) error
	FindByPlatformUserFunc func(ctx context.Context, tx repository.Tx, platform model.Platform, platformUserID string) (*model.Session, error)
	FindByIDFunc           func(ctx context.Context, tx repository.Tx, id string) (*model.Session, error)
	TouchFunc              func(ctx context.Context, tx repository.Tx, id string, t repository.SessionTouch) (*model.Session, error)
}

var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func (m *mockSessionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Session) error {
	return m.CreateFunc(ctx, tx, s)
}

func (m *mockSessionRepo) FindByPlatformUser(ctx context.Context, tx repository.Tx, platform model.Platform, platformUserID string) (*model.Session, error) {
	return m.FindByPlatformUserFunc(ctx, tx, platform, platformUserID)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	return m.FindByIDFunc(ctx, tx, id)
}

func (m *mockSessionRepo) Touch(ctx context.Context, tx repository.Tx, id string, t repository.SessionTouch) (*model.Session, error) {
	return m.TouchFunc(ctx, tx, id, t)
}

type mockMemoryRepo struct {
	InsertFunc     func(ctx context.Context, tx repository.Tx, e *model.MemoryEntry) error
	ListRecentFunc func(ctx context.Context, tx repository.Tx, sessionID string, limit int) ([]model.MemoryEntry, error)
	ArchiveAllFunc func(ctx context.Context, tx repository.Tx, sessionID string) (int64, error)
}

var _ repository.MemoryRepository = (*mockMemoryRepo)(nil)

func (m *mockMemoryRepo) Insert(ctx context.Context, tx repository.Tx, e *model.MemoryEntry) error {
	return m.InsertFunc(ctx, tx, e)
}

func (m *mockMemoryRepo) ListRecent(ctx context.Context, tx repository.Tx, sessionID string, limit int) ([]model.MemoryEntry, error) {
	return m.ListRecentFunc(ctx, tx, sessionID, limit)
}

func (m *mockMemoryRepo) ArchiveAll(ctx context.Context, tx repository.Tx, sessionID string) (int64, error) {
	return m.ArchiveAllFunc(ctx, tx, sessionID)
}
