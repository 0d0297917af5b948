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

var _ repository.IncomingRequestRepository = (*requestRepo)(nil)

// requestRepo is the audit trail of classification pipeline runs. It is
// independent of the jobs table: a pipeline run is synchronous, not a job.
type requestRepo struct {
	pool *pgxpool.Pool
}

func NewIncomingRequestRepo(pool *pgxpool.Pool) *requestRepo {
	return &requestRepo{pool: pool}
}

const requestColumns = `id, platform, platform_user_id, chat_id, COALESCE(message_id,''), raw_content, status, COALESCE(content_type,''), extracted_data, COALESCE(session_id,''), COALESCE(error,''), processed_at, created_at, updated_at`

func (r *requestRepo) Insert(ctx context.Context, tx repository.Tx, rec *model.IncomingRequest) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.Status == "" {
		rec.Status = model.RequestStatusProcessing
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	const q = `
INSERT INTO incoming_requests (id, platform, platform_user_id, chat_id, message_id, raw_content, status, session_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, $7, NULLIF($8,''), $9, $10);`

	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, string(rec.Platform), rec.PlatformUserID, rec.ChatID,
		rec.MessageID, rec.RawContent, string(rec.Status), rec.SessionID,
		rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *requestRepo) Update(ctx context.Context, tx repository.Tx, id string, patch model.RequestPatch) error {
	const q = `
UPDATE incoming_requests
SET status         = COALESCE(NULLIF($2,''), status),
    content_type   = COALESCE(NULLIF($3,''), content_type),
    extracted_data = COALESCE($4, extracted_data),
    error          = COALESCE(NULLIF($5,''), error),
    processed_at   = COALESCE($6, processed_at),
    updated_at     = NOW()
WHERE id = $1;`

	tag, err := execSQL(ctx, r.pool, tx, q,
		id, string(patch.Status), string(patch.ContentType),
		patch.ExtractedData, patch.Error, patch.ProcessedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *requestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.IncomingRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM incoming_requests WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	var rec model.IncomingRequest
	var platform, status, contentType string
	err = row.Scan(
		&rec.ID, &platform, &rec.PlatformUserID, &rec.ChatID, &rec.MessageID,
		&rec.RawContent, &status, &contentType, &rec.ExtractedData,
		&rec.SessionID, &rec.Error, &rec.ProcessedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	rec.Platform = model.Platform(platform)
	rec.Status = model.RequestStatus(status)
	rec.ContentType = model.ContentType(contentType)
	return &rec, nil
}
