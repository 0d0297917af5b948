package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"omnimap-agent/internal/domain"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
)

var _ repository.MemoryRepository = (*memoryRepo)(nil)

// memoryRepo persists session memory entries. The table is append-only;
// ArchiveAll is the only mutation and never removes rows.
type memoryRepo struct {
	pool *pgxpool.Pool
}

func NewMemoryRepo(pool *pgxpool.Pool) *memoryRepo {
	return &memoryRepo{pool: pool}
}

func (r *memoryRepo) Insert(ctx context.Context, tx repository.Tx, e *model.MemoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	const q = `
INSERT INTO session_memories (id, session_id, role, kind, content, archived, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`

	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.SessionID, string(e.Role), e.Kind, e.Content, e.Archived, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (r *memoryRepo) ListRecent(ctx context.Context, tx repository.Tx, sessionID string, limit int) ([]model.MemoryEntry, error) {
	const q = `
SELECT id, session_id, role, kind, content, archived, created_at
FROM session_memories
WHERE session_id = $1 AND archived = FALSE
ORDER BY created_at DESC
LIMIT $2;`

	rows, err := queryRows(ctx, r.pool, tx, q, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MemoryEntry
	for rows.Next() {
		var e model.MemoryEntry
		var role string
		if err := rows.Scan(&e.ID, &e.SessionID, &role, &e.Kind, &e.Content, &e.Archived, &e.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				break
			}
			return nil, domain.ErrReadDatabaseRow
		}
		e.Role = model.MemoryRole(role)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *memoryRepo) ArchiveAll(ctx context.Context, tx repository.Tx, sessionID string) (int64, error) {
	const q = `
UPDATE session_memories
SET archived = TRUE
WHERE session_id = $1 AND archived = FALSE;`

	tag, err := execSQL(ctx, r.pool, tx, q, sessionID)
	if err != nil {
		return 0, fmt.Errorf("archive memories: %w", err)
	}
	return tag.RowsAffected(), nil
}
