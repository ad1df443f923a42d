package services

import (
	"context"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

const (
	greetingText = "👋 Hi! I support text and images. Send me a message, or mention me in a group."

	helpText = `Here is what I can do:

/start - show the greeting
/help - show this message
/clear - forget the conversation in this chat

In private chats I answer every message. In groups, mention me or reply to one of my messages.
Reply to any message to give me its text as context. Photos with captions work too.`

	clearedText = "🧹 History cleared! Start a new conversation. 🚀"
)

type ChatHistory interface {
	Lock(chatID domain.ChatID) (unlock func())
	Clear(chatID domain.ChatID)
}

type chatService struct {
	history    ChatHistory
	responseCh chan<- domain.Response
}

func NewChatService(history ChatHistory, responseCh chan<- domain.Response) *chatService {
	return &chatService{
		history:    history,
		responseCh: responseCh,
	}
}

func (c *chatService) SendGreeting(ctx context.Context, chatID int64, replyTo int) {
	send(ctx, c.responseCh, domain.Response{ChatID: chatID, ReplyToMessageID: replyTo, Text: greetingText})
}

func (c *chatService) SendHelp(ctx context.Context, chatID int64, replyTo int) {
	send(ctx, c.responseCh, domain.Response{ChatID: chatID, ReplyToMessageID: replyTo, Text: helpText})
}

// ClearChatHistory waits for an in-flight turn of the chat before clearing.
func (c *chatService) ClearChatHistory(ctx context.Context, chatID int64, replyTo int) {
	unlock := c.history.Lock(chatID)
	c.history.Clear(chatID)
	unlock()

	send(ctx, c.responseCh, domain.Response{ChatID: chatID, ReplyToMessageID: replyTo, Text: clearedText})
}
