// File: internal/infra/adapters/telegram/sender.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
)

var _ adapter.MessageSender = (*Sender)(nil)

// botAPI is the slice of tgbotapi.BotAPI the sender needs; narrowed for
// testability.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers outgoing messages over the Telegram Bot API. Messages
// default to HTML parse mode, matching how handlers format their replies.
type Sender struct {
	bot botAPI
	log *zerolog.Logger
}

func NewSender(token string, log *zerolog.Logger) (*Sender, error) {
	if token == "" {
		return nil, errors.New("telegram bot token empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	log.Info().Str("username", bot.Self.UserName).Msg("telegram bot authorized")
	return &Sender{bot: bot, log: log}, nil
}

func (s *Sender) Send(ctx context.Context, msg adapter.OutgoingMessage) (adapter.SendResult, error) {
	if err := ctx.Err(); err != nil {
		return adapter.SendResult{Error: err.Error()}, err
	}

	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return adapter.SendResult{Error: "invalid chat id"}, fmt.Errorf("telegram chat id %q: %w", msg.ChatID, err)
	}

	out := tgbotapi.NewMessage(chatID, msg.Text)
	out.ParseMode = msg.ParseMode
	if out.ParseMode == "" {
		out.ParseMode = tgbotapi.ModeHTML
	}

	sent, err := s.bot.Send(out)
	if err != nil {
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		return adapter.SendResult{Error: err.Error()}, err
	}

	return adapter.SendResult{
		Success:   true,
		MessageID: strconv.Itoa(sent.MessageID),
	}, nil
}

// Platform returns the platform this sender serves; used at registry
// construction.
func (s *Sender) Platform() model.Platform { return model.PlatformTelegram }
