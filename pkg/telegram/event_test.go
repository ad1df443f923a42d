package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

const testBotID int64 = 42

func TestToInboundEvent_ChatKind(t *testing.T) {
	tests := []struct {
		chatType string
		want     domain.ChatKind
	}{
		{chatType: "private", want: domain.ChatKindPrivate},
		{chatType: "group", want: domain.ChatKindGroup},
		{chatType: "supergroup", want: domain.ChatKindGroup},
		{chatType: "channel", want: domain.ChatKindGroup},
	}

	for _, tt := range tests {
		t.Run(tt.chatType, func(t *testing.T) {
			msg := &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: -100, Type: tt.chatType}, Text: "hi"}

			got := ToInboundEvent(msg, testBotID)
			if got.ChatKind != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.ChatKind)
			}
			if got.ChatID != -100 || got.MessageID != 5 || got.Text != "hi" {
				t.Errorf("unexpected event: %+v", got)
			}
		})
	}
}

func TestToInboundEvent_Reply(t *testing.T) {
	tests := []struct {
		name        string
		reply       *tgbotapi.Message
		wantFromBot bool
	}{
		{
			name:        "reply to bot",
			reply:       &tgbotapi.Message{Text: "earlier answer", From: &tgbotapi.User{ID: testBotID}},
			wantFromBot: true,
		},
		{
			name:  "reply to user",
			reply: &tgbotapi.Message{Caption: "a photo", From: &tgbotapi.User{ID: 7}},
		},
		{
			name:  "reply without sender",
			reply: &tgbotapi.Message{Text: "channel post"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &tgbotapi.Message{
				Chat:           &tgbotapi.Chat{ID: 1, Type: "group"},
				Text:           "what?",
				ReplyToMessage: tt.reply,
			}

			got := ToInboundEvent(msg, testBotID)
			if got.ReplyTo == nil {
				t.Fatal("expected quoted message")
			}
			if got.IsReplyToBot() != tt.wantFromBot {
				t.Errorf("expected reply to bot %v, got %v", tt.wantFromBot, got.IsReplyToBot())
			}
			if got.ReplyTo.Text != tt.reply.Text || got.ReplyTo.Caption != tt.reply.Caption {
				t.Errorf("unexpected quoted message: %+v", got.ReplyTo)
			}
		})
	}
}

func TestToInboundEvent_Photos(t *testing.T) {
	msg := &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: 1, Type: "private"},
		Caption: "look",
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90, Height: 90, FileSize: 1000},
			{FileID: "large", Width: 1280, Height: 1280, FileSize: 90000},
		},
	}

	got := ToInboundEvent(msg, testBotID)
	if !got.HasPhoto() || len(got.Photos) != 2 {
		t.Fatalf("expected 2 photo sizes, got %+v", got.Photos)
	}
	if got.Photos[1] != (domain.PhotoSize{FileID: "large", Width: 1280, Height: 1280, FileSize: 90000}) {
		t.Errorf("unexpected photo size: %+v", got.Photos[1])
	}
	if got.RawText() != "look" {
		t.Errorf("expected caption as raw text, got %q", got.RawText())
	}
	if got.ReplyTo != nil {
		t.Errorf("expected no quoted message, got %+v", got.ReplyTo)
	}
}
