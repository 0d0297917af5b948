package adapter

import (
	"context"

	"omnimap-agent/internal/domain/model"
)

// Classifier is the port for the external content-classification
// capability. Transcript is the rendered conversation history ("" when no
// context is available). Implementations must honor ctx deadlines; the
// router treats any error, and a nil classification, as a soft failure
// and falls back to a default decision.
type Classifier interface {
	Classify(ctx context.Context, text, transcript string) (*model.Classification, error)
}

// ChatResponder generates a short contextual reply for messages routed to
// the conversation handler.
type ChatResponder interface {
	Respond(ctx context.Context, text, transcript string) (string, error)
}
