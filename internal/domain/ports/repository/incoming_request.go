package repository

import (
	"context"

	"omnimap-agent/internal/domain/model"
)

type IncomingRequestRepository interface {
	Insert(ctx context.Context, tx Tx, r *model.IncomingRequest) error
	Update(ctx context.Context, tx Tx, id string, patch model.RequestPatch) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.IncomingRequest, error)
}
