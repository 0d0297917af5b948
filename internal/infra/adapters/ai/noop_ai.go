// File: internal/infra/adapters/ai/noop_ai.go
package ai

import (
	"context"
	"net/url"
	"strings"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
)

var _ adapter.Classifier = (*NoopClassifier)(nil)
var _ adapter.ChatResponder = (*NoopClassifier)(nil)

// NoopClassifier is the local/dev backend used when no AI key is
// configured. It classifies with a cheap heuristic (URL sniffing) so the
// full pipeline stays exercisable offline.
type NoopClassifier struct{}

func NewNoopClassifier() *NoopClassifier { return &NoopClassifier{} }

func (c *NoopClassifier) Classify(_ context.Context, text, _ string) (*model.Classification, error) {
	if u := firstURL(text); u != nil {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		switch {
		case strings.Contains(host, "instagram.com") || host == "instagr.am":
			return parseClassification("classify_as_instagram_link", map[string]any{
				"url": u.String(), "confidence": 0.9,
			}), nil
		case strings.Contains(host, "tiktok.com"):
			return parseClassification("classify_as_tiktok_link", map[string]any{
				"url": u.String(), "confidence": 0.9,
			}), nil
		default:
			return parseClassification("classify_as_other_link", map[string]any{
				"url": u.String(), "domain": host, "confidence": 0.9,
			}), nil
		}
	}
	return model.FallbackClassification(text, 0.5, "general"), nil
}

func (c *NoopClassifier) Respond(_ context.Context, _, _ string) (string, error) {
	return "This is a local development response. Configure an AI backend for real replies.", nil
}

func firstURL(text string) *url.URL {
	for _, tok := range strings.Fields(text) {
		if !strings.HasPrefix(tok, "http://") && !strings.HasPrefix(tok, "https://") {
			continue
		}
		if u, err := url.Parse(tok); err == nil && u.Host != "" {
			return u
		}
	}
	return nil
}
