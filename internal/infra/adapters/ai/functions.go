// File: internal/infra/adapters/ai/functions.go
package ai

import (
	"omnimap-agent/internal/domain/model"
)

// The classification surface is expressed once as provider-neutral
// function specs; each SDK adapter converts them to its own schema type.

type fieldSpec struct {
	name string
	typ  string // "string" | "number" | "array"
	desc string
	enum []string
}

type functionSpec struct {
	name     string
	desc     string
	fields   []fieldSpec
	required []string
}

var classificationFunctions = []functionSpec{
	{
		name: "classify_as_place_name",
		desc: "Classify the message as containing a place name. Use this when the user mentions a specific location, restaurant, cafe, hotel, landmark, or any geographical place.",
		fields: []fieldSpec{
			{name: "place_name", typ: "string", desc: "The extracted place name"},
			{name: "location_hints", typ: "array", desc: "Additional context clues about the location (city, country, neighborhood, etc.)"},
			{name: "confidence", typ: "number", desc: "Confidence level from 0.0 to 1.0"},
		},
		required: []string{"place_name", "confidence"},
	},
	{
		name: "classify_as_conversation",
		desc: "Classify the message as general conversation. Use this for: questions, greetings (hi, hello), casual chat, requests for help, unclear messages, or anything that doesn't fit other categories.",
		fields: []fieldSpec{
			{name: "message_text", typ: "string", desc: "The full message text"},
			{name: "topic", typ: "string", desc: "The topic (e.g., 'greeting', 'question', 'help_request', 'general', 'unclear')"},
			{name: "intent", typ: "string", desc: "The intent (e.g., 'greet', 'get_info', 'get_help', 'chat', 'unclear')"},
			{name: "confidence", typ: "number", desc: "Confidence level from 0.0 to 1.0"},
		},
		required: []string{"message_text", "confidence"},
	},
	{
		name: "classify_as_instagram_link",
		desc: "Classify the message as containing an Instagram link (post, reel, or story URL).",
		fields: []fieldSpec{
			{name: "url", typ: "string", desc: "The full Instagram URL"},
			{name: "content_id", typ: "string", desc: "The post or reel ID extracted from the URL"},
			{name: "username", typ: "string", desc: "The Instagram username if present in the URL"},
			{name: "content_type", typ: "string", desc: "Type of Instagram content", enum: []string{"post", "reel", "story", "unknown"}},
			{name: "confidence", typ: "number", desc: "Confidence level from 0.0 to 1.0"},
		},
		required: []string{"url", "confidence"},
	},
	{
		name: "classify_as_tiktok_link",
		desc: "Classify the message as containing a TikTok link (video URL).",
		fields: []fieldSpec{
			{name: "url", typ: "string", desc: "The full TikTok URL"},
			{name: "video_id", typ: "string", desc: "The video ID extracted from the URL"},
			{name: "username", typ: "string", desc: "The TikTok username if present in the URL"},
			{name: "confidence", typ: "number", desc: "Confidence level from 0.0 to 1.0"},
		},
		required: []string{"url", "confidence"},
	},
	{
		name: "classify_as_other_link",
		desc: "Classify the message as containing a non-Instagram/TikTok link.",
		fields: []fieldSpec{
			{name: "url", typ: "string", desc: "The full URL"},
			{name: "domain", typ: "string", desc: "The domain of the URL"},
			{name: "description", typ: "string", desc: "Brief description of what the link might contain"},
			{name: "confidence", typ: "number", desc: "Confidence level from 0.0 to 1.0"},
		},
		required: []string{"url", "confidence"},
	},
}

// parseClassification maps a called function and its arguments onto a
// typed decision. Unknown function names degrade to a conversation
// decision rather than an error: classification is advisory.
func parseClassification(functionName string, args map[string]any) *model.Classification {
	switch functionName {
	case "classify_as_place_name":
		return &model.Classification{
			Type: model.ContentTypePlaceName,
			Extracted: model.ExtractedData{
				ContentType:   model.ContentTypePlaceName,
				Confidence:    argFloat(args, "confidence"),
				PlaceName:     argString(args, "place_name"),
				LocationHints: argStrings(args, "location_hints"),
			},
		}
	case "classify_as_conversation":
		return &model.Classification{
			Type: model.ContentTypeConversation,
			Extracted: model.ExtractedData{
				ContentType:   model.ContentTypeConversation,
				Confidence:    argFloat(args, "confidence"),
				MessageText:   argString(args, "message_text"),
				MessageTopic:  argString(args, "topic"),
				MessageIntent: argString(args, "intent"),
			},
		}
	case "classify_as_instagram_link":
		return &model.Classification{
			Type: model.ContentTypeInstagramLink,
			Extracted: model.ExtractedData{
				ContentType:   model.ContentTypeInstagramLink,
				Confidence:    argFloat(args, "confidence"),
				URL:           argString(args, "url"),
				LinkDomain:    "instagram.com",
				LinkContentID: argString(args, "content_id"),
				LinkUsername:  argString(args, "username"),
				LinkType:      argString(args, "content_type"),
			},
		}
	case "classify_as_tiktok_link":
		return &model.Classification{
			Type: model.ContentTypeTikTokLink,
			Extracted: model.ExtractedData{
				ContentType:   model.ContentTypeTikTokLink,
				Confidence:    argFloat(args, "confidence"),
				URL:           argString(args, "url"),
				LinkDomain:    "tiktok.com",
				LinkContentID: argString(args, "video_id"),
				LinkUsername:  argString(args, "username"),
				LinkType:      "video",
			},
		}
	case "classify_as_other_link":
		ext := model.ExtractedData{
			ContentType: model.ContentTypeOtherLink,
			Confidence:  argFloat(args, "confidence"),
			URL:         argString(args, "url"),
			LinkDomain:  argString(args, "domain"),
		}
		if desc := argString(args, "description"); desc != "" {
			ext.Extra = map[string]any{"description": desc}
		}
		return &model.Classification{Type: model.ContentTypeOtherLink, Extracted: ext}
	}
	return model.FallbackClassification(argString(args, "message_text"), 0.5, "unclear")
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argFloat(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func argStrings(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
