package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"omnimap-agent/internal/domain"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*sessionRepo)(nil)

type sessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *sessionRepo {
	return &sessionRepo{pool: pool}
}

const sessionColumns = `id, platform, platform_user_id, COALESCE(platform_chat_id,''), last_message_at, metadata, created_at, updated_at`

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	var platform string
	err := row.Scan(
		&s.ID, &platform, &s.PlatformUserID, &s.PlatformChatID,
		&s.LastMessageAt, &s.Metadata, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.Platform = model.Platform(platform)
	return &s, nil
}

func (r *sessionRepo) Create(ctx context.Context, tx repository.Tx, s *model.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.LastMessageAt.IsZero() {
		s.LastMessageAt = now
	}
	s.UpdatedAt = now

	const q = `
INSERT INTO sessions (id, platform, platform_user_id, platform_chat_id, last_message_at, metadata, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, $7, $8);`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, string(s.Platform), s.PlatformUserID, s.PlatformChatID,
		s.LastMessageAt, s.Metadata, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *sessionRepo) FindByPlatformUser(ctx context.Context, tx repository.Tx, platform model.Platform, platformUserID string) (*model.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE platform = $1 AND platform_user_id = $2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, string(platform), platformUserID)
	if err != nil {
		return nil, err
	}
	return scanSession(row)
}

func (r *sessionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanSession(row)
}

// Touch is last-write-wins on purpose: concurrent messages from the same
// user only contend on last_message_at.
func (r *sessionRepo) Touch(ctx context.Context, tx repository.Tx, id string, t repository.SessionTouch) (*model.Session, error) {
	when := t.LastMessageAt
	if when.IsZero() {
		when = time.Now().UTC()
	}

	q := `
UPDATE sessions
SET last_message_at  = $2,
    platform_chat_id = COALESCE(NULLIF($3,''), platform_chat_id),
    metadata         = COALESCE($4, metadata),
    updated_at       = NOW()
WHERE id = $1
RETURNING ` + sessionColumns + `;`

	row, err := pickRow(ctx, r.pool, tx, q, id, when, t.PlatformChatID, t.Metadata)
	if err != nil {
		return nil, err
	}
	return scanSession(row)
}
