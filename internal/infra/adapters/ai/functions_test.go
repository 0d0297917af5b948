// File: internal/infra/adapters/ai/functions_test.go
package ai

import (
	"context"
	"strings"
	"testing"

	"omnimap-agent/internal/domain/model"
)

func TestParseClassification_PlaceName(t *testing.T) {
	c := parseClassification("classify_as_place_name", map[string]any{
		"place_name":     "Blue Bottle Coffee",
		"location_hints": []any{"Oakland", "California"},
		"confidence":     0.92,
	})

	if c.Type != model.ContentTypePlaceName {
		t.Fatalf("type = %q", c.Type)
	}
	if c.Extracted.PlaceName != "Blue Bottle Coffee" {
		t.Errorf("place name = %q", c.Extracted.PlaceName)
	}
	if len(c.Extracted.LocationHints) != 2 || c.Extracted.LocationHints[0] != "Oakland" {
		t.Errorf("hints = %v", c.Extracted.LocationHints)
	}
	if c.Extracted.Confidence != 0.92 {
		t.Errorf("confidence = %v", c.Extracted.Confidence)
	}
}

func TestParseClassification_Links(t *testing.T) {
	insta := parseClassification("classify_as_instagram_link", map[string]any{
		"url": "https://instagram.com/p/abc", "content_id": "abc", "content_type": "post", "confidence": 0.9,
	})
	if insta.Type != model.ContentTypeInstagramLink || insta.Extracted.LinkDomain != "instagram.com" {
		t.Errorf("instagram: %+v", insta.Extracted)
	}
	if insta.Extracted.LinkContentID != "abc" || insta.Extracted.LinkType != "post" {
		t.Errorf("instagram extraction: %+v", insta.Extracted)
	}

	tiktok := parseClassification("classify_as_tiktok_link", map[string]any{
		"url": "https://tiktok.com/@u/video/42", "video_id": "42", "username": "u", "confidence": 0.9,
	})
	if tiktok.Type != model.ContentTypeTikTokLink || tiktok.Extracted.LinkType != "video" {
		t.Errorf("tiktok: %+v", tiktok.Extracted)
	}
	if tiktok.Extracted.LinkContentID != "42" {
		t.Errorf("tiktok video id = %q", tiktok.Extracted.LinkContentID)
	}

	other := parseClassification("classify_as_other_link", map[string]any{
		"url": "https://example.com/x", "domain": "example.com", "description": "an article", "confidence": 0.7,
	})
	if other.Type != model.ContentTypeOtherLink || other.Extracted.LinkDomain != "example.com" {
		t.Errorf("other: %+v", other.Extracted)
	}
	if other.Extracted.Extra["description"] != "an article" {
		t.Errorf("extra = %v", other.Extracted.Extra)
	}
}

func TestParseClassification_UnknownFunctionDegrades(t *testing.T) {
	c := parseClassification("classify_as_something_new", map[string]any{"message_text": "hi"})
	if c.Type != model.ContentTypeConversation {
		t.Fatalf("type = %q, want conversation", c.Type)
	}
	if c.Extracted.Confidence != 0.5 {
		t.Errorf("confidence = %v", c.Extracted.Confidence)
	}
}

func TestBuildClassificationPrompt(t *testing.T) {
	plain := buildClassificationPrompt("")
	if strings.Contains(plain, "Recent Conversation Context") {
		t.Error("no-context prompt must not carry the context section")
	}

	withCtx := buildClassificationPrompt("User: hi\nAssistant: hello")
	if !strings.Contains(withCtx, "User: hi") {
		t.Error("transcript missing from prompt")
	}
	if !strings.Contains(withCtx, "Recent Conversation Context") {
		t.Error("context section header missing")
	}
}

func TestNoopClassifier_SniffsLinks(t *testing.T) {
	c := NewNoopClassifier()

	insta, err := c.Classify(context.Background(), "check https://www.instagram.com/reel/xyz out", "")
	if err != nil || insta.Type != model.ContentTypeInstagramLink {
		t.Fatalf("instagram sniff: %v %+v", err, insta)
	}

	tiktok, _ := c.Classify(context.Background(), "https://vm.tiktok.com/ZM1234/", "")
	if tiktok.Type != model.ContentTypeTikTokLink {
		t.Errorf("tiktok sniff: %+v", tiktok)
	}

	plain, _ := c.Classify(context.Background(), "hello there", "")
	if plain.Type != model.ContentTypeConversation {
		t.Errorf("plain text: %+v", plain)
	}
}
