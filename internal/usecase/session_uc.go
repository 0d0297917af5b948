// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
	"omnimap-agent/internal/infra/metrics"
)

// Compile-time check
var _ SessionLifecycle = (*sessionUC)(nil)

// SessionLifecycle resolves "the active session" for a (platform, user)
// pair, enforcing the inactivity-expiry rule. The second return value is
// true when the conversational context starts fresh: brand-new session or
// an expired one whose memories were just archived.
type SessionLifecycle interface {
	GetOrCreateActive(ctx context.Context, platform model.Platform, platformUserID, platformChatID string, metadata map[string]any) (*model.Session, bool, error)
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

type sessionUC struct {
	sessions  repository.SessionRepository
	memories  repository.MemoryRepository
	threshold time.Duration
	now       func() time.Time
	log       *zerolog.Logger
}

func NewSessionLifecycle(sessions repository.SessionRepository, memories repository.MemoryRepository, threshold time.Duration, log *zerolog.Logger) *sessionUC {
	if threshold <= 0 {
		threshold = 30 * time.Minute
	}
	return &sessionUC{
		sessions:  sessions,
		memories:  memories,
		threshold: threshold,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

// GetOrCreateActive is a read-then-branch-then-write sequence, not a
// single atomic operation. Two concurrent messages for an expired session
// can both run the archive step; that is safe because ArchiveAll only
// flips archived=false rows (the second call is a no-op). The worst
// observable effect is two isNewContext=true results for one logical
// expiry, i.e. at most a duplicate greeting downstream.
func (u *sessionUC) GetOrCreateActive(ctx context.Context, platform model.Platform, platformUserID, platformChatID string, metadata map[string]any) (*model.Session, bool, error) {
	now := u.now()

	existing, err := u.sessions.FindByPlatformUser(ctx, nil, platform, platformUserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, err
		}
		s := &model.Session{
			Platform:       platform,
			PlatformUserID: platformUserID,
			PlatformChatID: platformChatID,
			LastMessageAt:  now,
			Metadata:       metadata,
		}
		if err := u.sessions.Create(ctx, nil, s); err != nil {
			return nil, false, err
		}
		u.log.Debug().Str("session_id", s.ID).Str("platform", string(platform)).Msg("session created")
		return s, true, nil
	}

	isNewContext := false
	if existing.ExpiredAt(now, u.threshold) {
		archived, err := u.memories.ArchiveAll(ctx, nil, existing.ID)
		if err != nil {
			// Failing to archive must not lose the message; treat the
			// session as continuing and let the next message retry.
			u.log.Warn().Err(err).Str("session_id", existing.ID).Msg("archive on expiry failed")
		} else {
			isNewContext = true
			metrics.IncSessionExpired()
			u.log.Info().
				Str("session_id", existing.ID).
				Int64("archived", archived).
				Dur("inactive_for", now.Sub(existing.LastMessageAt)).
				Msg("session context expired")
		}
	}

	touched, err := u.sessions.Touch(ctx, nil, existing.ID, repository.SessionTouch{
		LastMessageAt:  now,
		PlatformChatID: platformChatID,
		Metadata:       metadata,
	})
	if err != nil {
		return nil, false, err
	}
	return touched, isNewContext, nil
}

func (u *sessionUC) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return u.sessions.FindByID(ctx, nil, id)
}
