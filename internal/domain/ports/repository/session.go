package repository

import (
	"context"
	"time"

	"omnimap-agent/internal/domain/model"
)

// SessionTouch is the per-message session update: bump last_message_at
// and optionally refresh chat id / metadata.
type SessionTouch struct {
	LastMessageAt  time.Time
	PlatformChatID string
	Metadata       map[string]any
}

type SessionRepository interface {
	Create(ctx context.Context, tx Tx, s *model.Session) error

	// FindByPlatformUser returns the single session row for a
	// (platform, platform_user_id) pair, or domain.ErrNotFound.
	FindByPlatformUser(ctx context.Context, tx Tx, platform model.Platform, platformUserID string) (*model.Session, error)

	FindByID(ctx context.Context, tx Tx, id string) (*model.Session, error)

	// Touch applies the per-message update and returns the updated row.
	Touch(ctx context.Context, tx Tx, id string, t SessionTouch) (*model.Session, error)
}
