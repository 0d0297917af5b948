package repository

import (
	"context"

	"omnimap-agent/internal/domain/model"
)

type MemoryRepository interface {
	// Insert appends one memory entry. Entries are never updated or
	// deleted afterwards; archive is the only later mutation.
	Insert(ctx context.Context, tx Tx, e *model.MemoryEntry) error

	// ListRecent returns up to limit non-archived entries for the
	// session, newest first.
	ListRecent(ctx context.Context, tx Tx, sessionID string, limit int) ([]model.MemoryEntry, error)

	// ArchiveAll bulk-sets archived=true on every non-archived entry of
	// the session and returns the number of rows affected. Idempotent:
	// a second call is a no-op.
	ArchiveAll(ctx context.Context, tx Tx, sessionID string) (int64, error)
}
