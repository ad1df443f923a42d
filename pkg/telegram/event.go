package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

// ToInboundEvent normalises a Telegram message. Every chat that is not
// private (groups, supergroups) is treated as a group.
func ToInboundEvent(msg *tgbotapi.Message, botID int64) domain.InboundEvent {
	event := domain.InboundEvent{
		ChatID:    msg.Chat.ID,
		ChatKind:  lo.Ternary(msg.Chat.IsPrivate(), domain.ChatKindPrivate, domain.ChatKindGroup),
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Caption:   msg.Caption,
		Photos: lo.Map(msg.Photo, func(p tgbotapi.PhotoSize, _ int) domain.PhotoSize {
			return domain.PhotoSize{FileID: p.FileID, Width: p.Width, Height: p.Height, FileSize: p.FileSize}
		}),
	}

	if reply := msg.ReplyToMessage; reply != nil {
		event.ReplyTo = &domain.QuotedMessage{
			Text:    reply.Text,
			Caption: reply.Caption,
			FromBot: reply.From != nil && reply.From.ID == botID,
		}
	}

	return event
}
