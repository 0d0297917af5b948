package repository

import (
	"context"

	"omnimap-agent/internal/domain/model"
)

// JobRepository is the typed surface over the jobs table. Claim is the
// only operation contended between workers; everything else is plain
// insert/read/patch.
type JobRepository interface {
	// Insert persists a new queued job and fills in ID/timestamps when
	// absent.
	Insert(ctx context.Context, tx Tx, job *model.Job) error

	// FetchNextQueued returns the oldest queued job whose type is in the
	// allowed set, or domain.ErrNotFound. Read-only: it grants no
	// exclusivity.
	FetchNextQueued(ctx context.Context, types []model.JobType) (*model.Job, error)

	// Claim transitions the job queued->processing with a conditional
	// update. Exactly one concurrent caller wins; losers get
	// domain.ErrNotFound. This is the queue's sole concurrency-safety
	// mechanism.
	Claim(ctx context.Context, jobID string) (*model.Job, error)

	// Update applies an unconditional patch (terminal transitions,
	// results, errors).
	Update(ctx context.Context, tx Tx, jobID string, patch model.JobPatch) error

	FindByID(ctx context.Context, tx Tx, jobID string) (*model.Job, error)
}
