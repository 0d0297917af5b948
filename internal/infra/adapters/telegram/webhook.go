// File: internal/infra/adapters/telegram/webhook.go
package telegram

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"omnimap-agent/internal/domain/model"
)

// DecodeUpdate reads one webhook update from the request body.
func DecodeUpdate(r io.Reader) (*tgbotapi.Update, error) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r).Decode(&update); err != nil {
		return nil, err
	}
	return &update, nil
}

// ToUnifiedRequest converts a Telegram update into the platform-agnostic
// request. It returns false for updates that carry no processable message
// (edits, channel posts, callback queries).
func ToUnifiedRequest(update *tgbotapi.Update) (*model.UnifiedRequest, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil, false
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	req := &model.UnifiedRequest{
		Platform:       model.PlatformTelegram,
		PlatformUserID: strconv.FormatInt(msg.From.ID, 10),
		PlatformChatID: strconv.FormatInt(msg.Chat.ID, 10),
		MessageID:      strconv.Itoa(msg.MessageID),
		SenderUsername: msg.From.UserName,
		RawContent:     text,
		Timestamp:      time.Unix(int64(msg.Date), 0).UTC(),
		Metadata: map[string]any{
			"username":      msg.From.UserName,
			"first_name":    msg.From.FirstName,
			"last_name":     msg.From.LastName,
			"language_code": msg.From.LanguageCode,
		},
	}

	display := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	if display != "" {
		req.SenderDisplayName = display
	}
	return req, true
}

// BotCommand returns the bare command of the update ("start", "hello") or
// "" when the message is not a command.
func BotCommand(update *tgbotapi.Update) string {
	if update.Message == nil || !update.Message.IsCommand() {
		return ""
	}
	return update.Message.Command()
}
