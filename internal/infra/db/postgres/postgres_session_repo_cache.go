package postgres

import (
	"context"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
	"omnimap-agent/internal/infra/metrics"
	red "omnimap-agent/internal/infra/redis"
)

var _ repository.SessionRepository = (*sessionRepoCacheDecorator)(nil)

// sessionRepoCacheDecorator caches FindByID lookups (the worker's
// platform-resolution path). Lifecycle reads go straight to postgres:
// FindByPlatformUser feeds the expiry decision and must see a fresh
// last_message_at.
type sessionRepoCacheDecorator struct {
	inner repository.SessionRepository
	cache *red.SessionCache
}

func NewSessionRepoCacheDecorator(inner repository.SessionRepository, cache *red.SessionCache) repository.SessionRepository {
	return &sessionRepoCacheDecorator{inner: inner, cache: cache}
}

func (d *sessionRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, s *model.Session) error {
	if err := d.inner.Create(ctx, tx, s); err != nil {
		return err
	}
	_ = d.cache.Store(ctx, s)
	return nil
}

func (d *sessionRepoCacheDecorator) FindByPlatformUser(ctx context.Context, tx repository.Tx, platform model.Platform, platformUserID string) (*model.Session, error) {
	return d.inner.FindByPlatformUser(ctx, tx, platform, platformUserID)
}

func (d *sessionRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	if s, err := d.cache.Get(ctx, id); err == nil {
		metrics.IncCacheOp("hit")
		return s, nil
	} else if err != red.Nil {
		metrics.IncCacheOp("error")
	} else {
		metrics.IncCacheOp("miss")
	}

	s, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	_ = d.cache.Store(ctx, s)
	return s, nil
}

func (d *sessionRepoCacheDecorator) Touch(ctx context.Context, tx repository.Tx, id string, t repository.SessionTouch) (*model.Session, error) {
	s, err := d.inner.Touch(ctx, tx, id, t)
	if err != nil {
		// Stale cache entries are worse than a miss.
		_ = d.cache.Invalidate(ctx, id)
		return nil, err
	}
	_ = d.cache.Store(ctx, s)
	return s, nil
}
