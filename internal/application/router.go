// File: internal/application/router.go
package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/domain/ports/repository"
	"omnimap-agent/internal/infra/logging"
	"omnimap-agent/internal/infra/metrics"
	"omnimap-agent/internal/usecase"
)

const fallbackConfidence = 0.3

// ClassificationRouter runs every inbound message through the same
// sequential pipeline: session resolution, context load, audit record,
// classification, handler dispatch, memory writes, terminal record update.
// It never returns an error; any failure is folded into the HandlerResult
// so the caller always has something to deliver.
type ClassificationRouter struct {
	sessions   usecase.SessionLifecycle
	memory     usecase.ConversationMemory
	requests   repository.IncomingRequestRepository
	classifier adapter.Classifier
	handlers   map[model.ContentType]ContentHandler
	log        *zerolog.Logger
	now        func() time.Time
}

// NewClassificationRouter builds the router with a static handler table.
// The table is fixed at construction; there is no runtime registration.
func NewClassificationRouter(
	sessions usecase.SessionLifecycle,
	memory usecase.ConversationMemory,
	requests repository.IncomingRequestRepository,
	classifier adapter.Classifier,
	handlers map[model.ContentType]ContentHandler,
	log *zerolog.Logger,
) *ClassificationRouter {
	copied := make(map[model.ContentType]ContentHandler, len(handlers))
	for t, h := range handlers {
		copied[t] = h
	}
	return &ClassificationRouter{
		sessions:   sessions,
		memory:     memory,
		requests:   requests,
		classifier: classifier,
		handlers:   copied,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ProcessInbound handles one message end to end. sessionID may be supplied
// by callers that already resolved the session (the worker path); when
// empty the router resolves it itself. The returned result is never nil.
func (r *ClassificationRouter) ProcessInbound(ctx context.Context, req *model.UnifiedRequest, sessionID string) *model.HandlerResult {
	start := r.now()

	session, isNewContext := r.resolveSession(ctx, req, sessionID)
	sid := ""
	if session != nil {
		sid = session.ID
		ctx = logging.WithSessionID(ctx, sid)
	}
	log := logging.With(ctx, r.log)

	cc := r.memory.LoadContext(ctx, sid, isNewContext)

	record := r.openRecord(ctx, req, sid)

	r.memory.SaveUserMessage(ctx, sid, req.RawContent, map[string]any{
		"platform":   string(req.Platform),
		"message_id": req.MessageID,
	})

	decision := r.classify(ctx, req, cc)

	r.patchRecord(ctx, record, model.RequestPatch{
		Status:        model.RequestStatusProcessing,
		ContentType:   decision.Type,
		ExtractedData: extractedToMap(decision.Extracted),
	})

	result := r.dispatch(ctx, HandlerInput{
		Request:  req,
		Session:  session,
		Context:  cc,
		Decision: decision,
	}, decision.Type)

	if result.Message != "" {
		r.memory.SaveAssistantMessage(ctx, sid, result.Message, map[string]any{
			"handler":      result.HandlerName,
			"content_type": string(result.ContentType),
		})
	}

	status := model.RequestStatusCompleted
	if !result.Success {
		status = model.RequestStatusFailed
	}
	processedAt := r.now()
	r.patchRecord(ctx, record, model.RequestPatch{
		Status:      status,
		Error:       result.Error,
		ProcessedAt: &processedAt,
	})

	metrics.IncRequest(string(req.Platform), string(decision.Type), string(status))
	log.Info().
		Str("platform", string(req.Platform)).
		Str("content_type", string(decision.Type)).
		Str("handler", result.HandlerName).
		Bool("success", result.Success).
		Dur("took", r.now().Sub(start)).
		Msg("inbound message processed")

	return result
}

// resolveSession returns (session, isNewContext). A resolution failure is
// logged and processing continues sessionless: a broken session store must
// not drop user messages.
func (r *ClassificationRouter) resolveSession(ctx context.Context, req *model.UnifiedRequest, sessionID string) (*model.Session, bool) {
	if sessionID != "" {
		s, err := r.sessions.FindByID(ctx, sessionID)
		if err != nil {
			r.log.Warn().Err(err).Str("session_id", sessionID).Msg("supplied session not found, continuing without")
			return nil, true
		}
		return s, false
	}

	s, isNew, err := r.sessions.GetOrCreateActive(ctx, req.Platform, req.PlatformUserID, req.PlatformChatID, req.Metadata)
	if err != nil {
		r.log.Error().Err(err).
			Str("platform", string(req.Platform)).
			Str("platform_user_id", req.PlatformUserID).
			Msg("session resolution failed, continuing without")
		return nil, true
	}
	return s, isNew
}

func (r *ClassificationRouter) classify(ctx context.Context, req *model.UnifiedRequest, cc *model.ConversationContext) *model.Classification {
	text := strings.TrimSpace(req.RawContent)
	if text == "" {
		// Nothing to classify; skip the round trip entirely.
		return model.FallbackClassification("", 1.0, "empty_message")
	}

	transcript := r.memory.RenderPrompt(cc)
	decision, err := r.classifier.Classify(ctx, text, transcript)
	if err != nil || decision == nil {
		if err != nil {
			r.log.Warn().Err(err).Msg("classification failed, falling back to conversation")
		}
		metrics.IncClassifierCall("router", "fallback")
		return model.FallbackClassification(text, fallbackConfidence, "general")
	}
	return decision
}

func (r *ClassificationRouter) dispatch(ctx context.Context, in HandlerInput, contentType model.ContentType) *model.HandlerResult {
	h, ok := r.handlers[contentType]
	if !ok {
		return &model.HandlerResult{
			HandlerName: string(contentType),
			ContentType: contentType,
			Error:       fmt.Sprintf("no handler registered for content type %q", contentType),
			ErrorCode:   "no_handler",
		}
	}
	return h.Handle(ctx, in)
}

// openRecord inserts the audit row for this pipeline run. Best effort: a
// failed insert returns nil and later patches become no-ops.
func (r *ClassificationRouter) openRecord(ctx context.Context, req *model.UnifiedRequest, sessionID string) *model.IncomingRequest {
	rec := &model.IncomingRequest{
		Platform:       req.Platform,
		PlatformUserID: req.PlatformUserID,
		ChatID:         req.PlatformChatID,
		MessageID:      req.MessageID,
		RawContent:     req.RawContent,
		Status:         model.RequestStatusProcessing,
		SessionID:      sessionID,
	}
	if err := r.requests.Insert(ctx, nil, rec); err != nil {
		r.log.Warn().Err(err).Msg("incoming request audit insert failed")
		return nil
	}
	return rec
}

func (r *ClassificationRouter) patchRecord(ctx context.Context, rec *model.IncomingRequest, patch model.RequestPatch) {
	if rec == nil {
		return
	}
	if err := r.requests.Update(ctx, nil, rec.ID, patch); err != nil {
		r.log.Warn().Err(err).Str("request_id", rec.ID).Msg("incoming request audit update failed")
	}
}

// extractedToMap flattens the typed extraction into the audit record's
// free-form column via its json tags.
func extractedToMap(ext model.ExtractedData) map[string]any {
	raw, err := json.Marshal(ext)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
