package adapter

import (
	"context"

	"omnimap-agent/internal/domain/model"
)

// PlaceSearch is the port for the external place-search capability used
// by the place_name handler.
type PlaceSearch interface {
	Search(ctx context.Context, q model.PlaceQuery) ([]model.PlaceResult, error)
}
