package services

import (
	"strings"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

// Gate decides whether an inbound message deserves a reply. Private chats are
// always answered; group chats only when the bot is mentioned or replied to.
// A message with nothing left after removing the mention and no image is
// dropped everywhere.
func Gate(in domain.GateInput) domain.GateDecision {
	if in.ChatKind != domain.ChatKindPrivate {
		mentioned := in.BotHandle != "" && strings.Contains(in.Text, mentionToken(in.BotHandle))
		if !mentioned && !in.IsReplyToBot {
			return domain.Drop
		}
	}

	if StripMention(in.Text, in.BotHandle) == "" && !in.HasImage {
		return domain.Drop
	}

	return domain.Respond
}

// StripMention removes every exact, case-sensitive "@handle" from text and
// trims the result.
func StripMention(text, botHandle string) string {
	if botHandle != "" {
		text = strings.ReplaceAll(text, mentionToken(botHandle), "")
	}
	return strings.TrimSpace(text)
}

func mentionToken(botHandle string) string {
	return "@" + botHandle
}
