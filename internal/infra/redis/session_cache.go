package redis

import (
	"context"
	"encoding/json"
	"time"

	"omnimap-agent/internal/domain/model"
)

// SessionCache is a read cache for session rows keyed by id. The worker
// resolves delivery platforms through FindByID on every job; those rows
// change rarely, so short-TTL caching keeps the hot path off postgres.
type SessionCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionCache(client RedisClient, ttl time.Duration) *SessionCache {
	return &SessionCache{client: client, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

func (c *SessionCache) Store(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(s.ID), data, c.ttl)
}

func (c *SessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(id))
	if err != nil {
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *SessionCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionKey(id))
}
