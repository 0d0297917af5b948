package model

import (
	"time"
)

// ContentType is the classifier's categorical decision about an inbound
// message's intent. It drives handler dispatch.
type ContentType string

const (
	ContentTypePlaceName     ContentType = "place_name"
	ContentTypeConversation  ContentType = "conversation"
	ContentTypeInstagramLink ContentType = "instagram_link"
	ContentTypeTikTokLink    ContentType = "tiktok_link"
	ContentTypeOtherLink     ContentType = "other_link"
)

// UnifiedRequest is the platform-agnostic form of an inbound message.
// Platform adapters produce it; everything downstream consumes only this.
type UnifiedRequest struct {
	Platform          Platform
	PlatformUserID    string
	PlatformChatID    string
	MessageID         string
	SenderUsername    string
	SenderDisplayName string
	RawContent        string
	Timestamp         time.Time
	Metadata          map[string]any
}

// ExtractedData is the structured payload of a classification decision.
// Which fields are set depends on the content type.
type ExtractedData struct {
	ContentType ContentType `json:"content_type"`
	Confidence  float64     `json:"confidence"`

	// place_name
	PlaceName     string   `json:"place_name,omitempty"`
	LocationHints []string `json:"location_hints,omitempty"`

	// conversation
	MessageText   string `json:"message_text,omitempty"`
	MessageTopic  string `json:"message_topic,omitempty"`
	MessageIntent string `json:"message_intent,omitempty"`

	// links
	URL           string `json:"url,omitempty"`
	LinkDomain    string `json:"link_domain,omitempty"`
	LinkContentID string `json:"link_content_id,omitempty"`
	LinkUsername  string `json:"link_username,omitempty"`
	LinkType      string `json:"link_type,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Classification is the classifier's single decision for one message.
type Classification struct {
	Type      ContentType
	Extracted ExtractedData
}

// FallbackClassification is the default low-stakes decision used when the
// classifier fails, returns nothing, or the message is empty. Confidence
// expresses how much the caller should trust it: 1.0 for the empty-message
// shortcut, lower for soft failures.
func FallbackClassification(text string, confidence float64, topic string) *Classification {
	return &Classification{
		Type: ContentTypeConversation,
		Extracted: ExtractedData{
			ContentType:   ContentTypeConversation,
			Confidence:    confidence,
			MessageText:   text,
			MessageTopic:  topic,
			MessageIntent: "unclear",
		},
	}
}

// HandlerResult is the structured outcome of one handler invocation. A
// failed handler still returns a result; Message (when non-empty) is
// delivered to the user either way.
type HandlerResult struct {
	Success     bool
	HandlerName string
	ContentType ContentType
	Data        map[string]any
	Message     string
	Error       string
	ErrorCode   string
	JobsCreated []string
}
