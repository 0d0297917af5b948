// File: internal/application/handlers.go
package application

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
	"omnimap-agent/internal/domain/ports/repository"
	"omnimap-agent/internal/usecase"
)

// HandlerInput bundles everything a content handler may need for one
// message. Session and Context may be nil when upstream resolution failed;
// handlers must cope.
type HandlerInput struct {
	Request  *model.UnifiedRequest
	Session  *model.Session
	Context  *model.ConversationContext
	Decision *model.Classification
}

// ContentHandler processes one classified message. Handlers never return
// an error: failures are encoded in the result so the pipeline always
// terminates with something deliverable.
type ContentHandler interface {
	Name() string
	Handle(ctx context.Context, in HandlerInput) *model.HandlerResult
}

// --- place_name ---------------------------------------------------------

type PlaceHandlerConfig struct {
	Language   string
	MaxResults int
}

type placeHandler struct {
	search adapter.PlaceSearch
	cfg    PlaceHandlerConfig
	log    *zerolog.Logger
}

var _ ContentHandler = (*placeHandler)(nil)

// NewPlaceHandler accepts a nil search adapter; handling then degrades to
// a structured failure instead of a panic at dispatch time.
func NewPlaceHandler(search adapter.PlaceSearch, cfg PlaceHandlerConfig, log *zerolog.Logger) *placeHandler {
	return &placeHandler{search: search, cfg: cfg, log: log}
}

func (h *placeHandler) Name() string { return "place_name" }

func (h *placeHandler) Handle(ctx context.Context, in HandlerInput) *model.HandlerResult {
	res := &model.HandlerResult{HandlerName: h.Name(), ContentType: model.ContentTypePlaceName}

	if h.search == nil {
		res.Error = "place search is not configured"
		res.ErrorCode = "place_search_unavailable"
		res.Message = "Sorry, place lookup is currently unavailable."
		return res
	}

	ext := in.Decision.Extracted
	name := strings.TrimSpace(ext.PlaceName)
	if name == "" {
		name = strings.TrimSpace(in.Request.RawContent)
	}

	q := model.PlaceQuery{
		Query:        name,
		LocationHint: strings.Join(ext.LocationHints, ", "),
		Language:     h.cfg.Language,
		MaxResults:   h.cfg.MaxResults,
	}

	results, err := h.search.Search(ctx, q)
	if err != nil {
		h.log.Error().Err(err).Str("query", q.SearchText()).Msg("place search failed")
		res.Error = err.Error()
		res.ErrorCode = "place_search_failed"
		res.Message = fmt.Sprintf("I couldn't look up \"%s\" right now. Please try again in a moment.", name)
		return res
	}

	if len(results) == 0 {
		res.Success = true
		res.Data = map[string]any{"query": q.SearchText(), "results": 0}
		res.Message = fmt.Sprintf("I couldn't find any places matching \"%s\". Try adding a city or neighborhood.", name)
		return res
	}

	top := results[0]
	res.Success = true
	res.Data = map[string]any{
		"query":    q.SearchText(),
		"results":  len(results),
		"place_id": top.PlaceID,
		"name":     top.Name,
		"address":  top.FormattedAddress,
	}
	res.Message = formatPlaceMessage(top, len(results))
	return res
}

func formatPlaceMessage(p model.PlaceResult, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📍 <b>%s</b>\n", html.EscapeString(p.Name))
	if p.FormattedAddress != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(p.FormattedAddress))
	}
	if p.Rating > 0 {
		fmt.Fprintf(&b, "⭐ %.1f (%d reviews)\n", p.Rating, p.UserRatingsTotal)
	}
	if p.GoogleMapsURL != "" {
		fmt.Fprintf(&b, "<a href=\"%s\">Open in Maps</a>\n", p.GoogleMapsURL)
	}
	if total > 1 {
		fmt.Fprintf(&b, "\n(%d more results available)", total-1)
	}
	return strings.TrimRight(b.String(), "\n")
}

// --- conversation -------------------------------------------------------

const cannedConversationReply = "Thanks for your message! Send me a place name or a link and I'll look it up for you."

type conversationHandler struct {
	responder adapter.ChatResponder
	memory    usecase.ConversationMemory
	log       *zerolog.Logger
}

var _ ContentHandler = (*conversationHandler)(nil)

func NewConversationHandler(responder adapter.ChatResponder, memory usecase.ConversationMemory, log *zerolog.Logger) *conversationHandler {
	return &conversationHandler{responder: responder, memory: memory, log: log}
}

func (h *conversationHandler) Name() string { return "conversation" }

// Handle always produces a user-visible message. An LLM failure yields
// the canned reply with Success=false so operators can see the miss while
// the user still gets an answer.
func (h *conversationHandler) Handle(ctx context.Context, in HandlerInput) *model.HandlerResult {
	res := &model.HandlerResult{HandlerName: h.Name(), ContentType: model.ContentTypeConversation}

	transcript := ""
	if in.Context != nil {
		transcript = h.memory.RenderPrompt(in.Context)
	}

	if h.responder == nil {
		res.Message = cannedConversationReply
		res.ErrorCode = "responder_unavailable"
		return res
	}

	reply, err := h.responder.Respond(ctx, in.Request.RawContent, transcript)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			h.log.Warn().Err(err).Msg("chat response failed, using fallback reply")
			res.Error = err.Error()
		}
		res.Message = cannedConversationReply
		res.ErrorCode = "chat_fallback"
		return res
	}

	res.Success = true
	res.Message = reply
	res.Data = map[string]any{"topic": in.Decision.Extracted.MessageTopic}
	return res
}

// --- links --------------------------------------------------------------

type linkHandler struct {
	contentType model.ContentType
	jobs        repository.JobRepository
	log         *zerolog.Logger
}

var _ ContentHandler = (*linkHandler)(nil)

// NewLinkHandler handles instagram_link and tiktok_link. Besides the
// immediate acknowledgment it enqueues a notify_user job carrying the link
// payload, so follow-up delivery goes through the queue like any other
// async work.
func NewLinkHandler(contentType model.ContentType, jobs repository.JobRepository, log *zerolog.Logger) *linkHandler {
	return &linkHandler{contentType: contentType, jobs: jobs, log: log}
}

func (h *linkHandler) Name() string { return string(h.contentType) }

func (h *linkHandler) Handle(ctx context.Context, in HandlerInput) *model.HandlerResult {
	res := &model.HandlerResult{HandlerName: h.Name(), ContentType: h.contentType}

	ext := in.Decision.Extracted
	label := "Instagram"
	if h.contentType == model.ContentTypeTikTokLink {
		label = "TikTok"
	}

	res.Success = true
	res.Data = map[string]any{
		"url":        ext.URL,
		"link_type":  ext.LinkType,
		"content_id": ext.LinkContentID,
		"username":   ext.LinkUsername,
	}
	res.Message = fmt.Sprintf("Got your %s link! I'll process it and get back to you.", label)

	if h.jobs != nil {
		job := &model.Job{
			Type:   model.JobTypeNotifyUser,
			ChatID: in.Request.PlatformChatID,
			Payload: map[string]any{
				"platform":     string(in.Request.Platform),
				"message":      fmt.Sprintf("Your %s link has been saved to your map. ✨", label),
				"url":          ext.URL,
				"content_type": string(h.contentType),
			},
		}
		if in.Session != nil {
			job.SessionID = in.Session.ID
		}
		if err := h.jobs.Insert(ctx, nil, job); err != nil {
			// The ack already covers the user; the follow-up is best effort.
			h.log.Warn().Err(err).Str("content_type", string(h.contentType)).Msg("follow-up job enqueue failed")
		} else {
			res.JobsCreated = append(res.JobsCreated, job.ID)
		}
	}
	return res
}

// --- other_link ---------------------------------------------------------

type otherLinkHandler struct{}

var _ ContentHandler = (*otherLinkHandler)(nil)

func NewOtherLinkHandler() *otherLinkHandler { return &otherLinkHandler{} }

func (h *otherLinkHandler) Name() string { return "other_link" }

func (h *otherLinkHandler) Handle(_ context.Context, in HandlerInput) *model.HandlerResult {
	ext := in.Decision.Extracted
	msg := "Thanks for the link!"
	if ext.LinkDomain != "" {
		msg = fmt.Sprintf("Thanks for the link from %s!", ext.LinkDomain)
	}
	return &model.HandlerResult{
		Success:     true,
		HandlerName: h.Name(),
		ContentType: model.ContentTypeOtherLink,
		Data:        map[string]any{"url": ext.URL, "domain": ext.LinkDomain},
		Message:     msg,
	}
}
