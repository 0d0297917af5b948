package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"omnimap-agent/internal/domain"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *jobRepo {
	return &jobRepo{pool: pool}
}

const jobColumns = `id, type, status, chat_id, COALESCE(session_id,''), COALESCE(parent_job_id,''), payload, result, COALESCE(error,''), created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	var typ, status string
	err := row.Scan(
		&j.ID, &typ, &status, &j.ChatID, &j.SessionID, &j.ParentJobID,
		&j.Payload, &j.Result, &j.Error, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	j.Type = model.JobType(typ)
	j.Status = model.JobStatus(status)
	return &j, nil
}

func (r *jobRepo) Insert(ctx context.Context, tx repository.Tx, job *model.Job) error {
	if job.ID == "" {
		// ULIDs keep "oldest first" reads index-friendly.
		job.ID = ulid.Make().String()
	}
	if job.Status == "" {
		job.Status = model.JobStatusQueued
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	const q = `
INSERT INTO jobs (id, type, status, chat_id, session_id, parent_job_id, payload, created_at, updated_at)
VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), $7, $8, $9);`

	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, string(job.Type), string(job.Status), job.ChatID,
		job.SessionID, job.ParentJobID, job.Payload, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInvalidExecContext) {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// FetchNextQueued returns the oldest queued job of an allowed type. It is a
// plain read; exclusivity comes from Claim.
func (r *jobRepo) FetchNextQueued(ctx context.Context, types []model.JobType) (*model.Job, error) {
	if len(types) == 0 {
		return nil, domain.ErrNotFound
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	q := `
SELECT ` + jobColumns + `
FROM jobs
WHERE status = 'queued' AND type = ANY($1)
ORDER BY created_at, id
LIMIT 1;`

	row, err := pickRow(ctx, r.pool, nil, q, names)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

// Claim performs the conditional queued->processing transition. The WHERE
// clause and the write are applied atomically by Postgres, so of two racing
// claimants exactly one sees a returned row; the other gets ErrNotFound.
func (r *jobRepo) Claim(ctx context.Context, jobID string) (*model.Job, error) {
	const q = `
UPDATE jobs
SET status = 'processing', updated_at = NOW()
WHERE id = $1 AND status = 'queued'
RETURNING ` + jobColumns + `;`

	row, err := pickRow(ctx, r.pool, nil, q, jobID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *jobRepo) Update(ctx context.Context, tx repository.Tx, jobID string, patch model.JobPatch) error {
	const q = `
UPDATE jobs
SET status     = COALESCE(NULLIF($2,''), status),
    result     = COALESCE($3, result),
    error      = COALESCE(NULLIF($4,''), error),
    updated_at = NOW()
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, jobID, string(patch.Status), patch.Result, patch.Error)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, jobID string) (*model.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}
