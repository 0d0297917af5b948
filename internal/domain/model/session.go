package model

import (
	"time"
)

// Platform identifies the chat platform a session or message belongs to.
type Platform string

const (
	PlatformTelegram  Platform = "telegram"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// ParsePlatform maps a stored string onto a known platform. Unknown
// values fall back to the provided default so jobs written by older
// versions still deliver somewhere sensible.
func ParsePlatform(s string, def Platform) Platform {
	switch Platform(s) {
	case PlatformTelegram, PlatformInstagram, PlatformTikTok:
		return Platform(s)
	}
	return def
}

// Session binds a platform user to an ongoing conversational context.
// One row per (platform, platform_user_id); the row is touched on every
// inbound message and never deleted. Expiry resets the conversational
// context (memory entries get archived) but preserves the session
// identity and its accumulated metadata.
type Session struct {
	ID             string
	Platform       Platform
	PlatformUserID string
	PlatformChatID string
	LastMessageAt  time.Time
	Metadata       map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExpiredAt reports whether the session's inactivity window has passed
// at the given instant.
func (s *Session) ExpiredAt(now time.Time, threshold time.Duration) bool {
	if s.LastMessageAt.IsZero() {
		return false
	}
	return now.Sub(s.LastMessageAt) > threshold
}
