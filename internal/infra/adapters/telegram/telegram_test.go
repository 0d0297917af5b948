// File: internal/infra/adapters/telegram/telegram_test.go
package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/adapter"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	return tgbotapi.Message{MessageID: 77}, nil
}

func testSender(bot botAPI) *Sender {
	l := zerolog.Nop()
	return &Sender{bot: bot, log: &l}
}

func TestSend_DefaultsToHTML(t *testing.T) {
	bot := &fakeBot{}
	s := testSender(bot)

	res, err := s.Send(context.Background(), adapter.OutgoingMessage{
		ChatID:   "12345",
		Text:     "<b>hi</b>",
		Platform: model.PlatformTelegram,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.MessageID != "77" {
		t.Errorf("result = %+v", res)
	}

	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent type %T", bot.sent[0])
	}
	if msg.ChatID != 12345 || msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("message config: %+v", msg)
	}
}

func TestSend_InvalidChatID(t *testing.T) {
	s := testSender(&fakeBot{})

	res, err := s.Send(context.Background(), adapter.OutgoingMessage{ChatID: "not-a-number", Text: "hi"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if res.Success {
		t.Error("result must not be successful")
	}
}

func TestSend_APIErrorSurfaces(t *testing.T) {
	s := testSender(&fakeBot{err: errors.New("forbidden: bot was blocked")})

	res, err := s.Send(context.Background(), adapter.OutgoingMessage{ChatID: "1", Text: "hi"})
	if err == nil || res.Success {
		t.Fatalf("expected failure, got %+v / %v", res, err)
	}
}

func TestToUnifiedRequest(t *testing.T) {
	update := &tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 9,
			Date:      1735732800,
			Text:      "Blue Bottle Coffee",
			From: &tgbotapi.User{
				ID:           42,
				UserName:     "sam",
				FirstName:    "Sam",
				LastName:     "Lee",
				LanguageCode: "en",
			},
			Chat: &tgbotapi.Chat{ID: 4242},
		},
	}

	req, ok := ToUnifiedRequest(update)
	if !ok {
		t.Fatal("expected a request")
	}
	if req.Platform != model.PlatformTelegram {
		t.Errorf("platform = %q", req.Platform)
	}
	if req.PlatformUserID != "42" || req.PlatformChatID != "4242" || req.MessageID != "9" {
		t.Errorf("ids: %+v", req)
	}
	if req.SenderDisplayName != "Sam Lee" {
		t.Errorf("display name = %q", req.SenderDisplayName)
	}
	if req.Metadata["language_code"] != "en" {
		t.Errorf("metadata = %v", req.Metadata)
	}
}

func TestToUnifiedRequest_NonMessageUpdate(t *testing.T) {
	if _, ok := ToUnifiedRequest(&tgbotapi.Update{}); ok {
		t.Fatal("updates without a message must be skipped")
	}
}

func TestToUnifiedRequest_CaptionFallback(t *testing.T) {
	update := &tgbotapi.Update{
		Message: &tgbotapi.Message{
			Caption: "look at this place",
			From:    &tgbotapi.User{ID: 1},
			Chat:    &tgbotapi.Chat{ID: 2},
		},
	}
	req, ok := ToUnifiedRequest(update)
	if !ok || req.RawContent != "look at this place" {
		t.Fatalf("caption not used: %+v", req)
	}
}

func TestBotCommand(t *testing.T) {
	update := &tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text:     "/start",
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
			From:     &tgbotapi.User{ID: 1},
			Chat:     &tgbotapi.Chat{ID: 2},
		},
	}
	if got := BotCommand(update); got != "start" {
		t.Errorf("command = %q", got)
	}

	plain := &tgbotapi.Update{Message: &tgbotapi.Message{Text: "hello", From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 2}}}
	if got := BotCommand(plain); got != "" {
		t.Errorf("command = %q, want empty", got)
	}
}

func TestDecodeUpdate(t *testing.T) {
	body := `{"update_id":1,"message":{"message_id":5,"text":"hi","from":{"id":42},"chat":{"id":7}}}`
	update, err := DecodeUpdate(strings.NewReader(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if update.Message == nil || update.Message.Text != "hi" {
		t.Fatalf("update = %+v", update)
	}
}
