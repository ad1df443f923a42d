package telegram

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

type TurnService interface {
	HandleEvent(ctx context.Context, event domain.InboundEvent)
}

type ChatService interface {
	SendGreeting(ctx context.Context, chatID int64, replyTo int)
	SendHelp(ctx context.Context, chatID int64, replyTo int)
	ClearChatHistory(ctx context.Context, chatID int64, replyTo int)
}

type handler struct {
	turnService TurnService
	chatService ChatService
	bot         tgbotapi.User
}

func NewHandler(
	turnService TurnService,
	chatService ChatService,
	bot tgbotapi.User,
) *handler {
	return &handler{
		turnService: turnService,
		chatService: chatService,
		bot:         bot,
	}
}

func (h *handler) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		slog.DebugContext(ctx, "Ignoring update without message")
		return
	}

	// Only a bot_command entity at offset 0 makes a command; "/usr/bin ..." is chat text.
	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
		return
	}

	h.turnService.HandleEvent(ctx, ToInboundEvent(msg, h.bot.ID))
}

func (h *handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd, target := parseCommand(msg.Text)
	if target != "" && !strings.EqualFold(target, h.bot.UserName) {
		slog.DebugContext(ctx, "Ignoring command for another bot", "cmd", cmd, "target", target)
		return
	}

	chatID, replyTo := msg.Chat.ID, msg.MessageID

	switch cmd {
	case "/start":
		h.chatService.SendGreeting(ctx, chatID, replyTo)
	case "/help":
		h.chatService.SendHelp(ctx, chatID, replyTo)
	case "/clear", "/new":
		h.chatService.ClearChatHistory(ctx, chatID, replyTo)
	default:
		slog.WarnContext(ctx, "Unhandled command", "cmd", cmd)
	}
}

// parseCommand splits "/cmd@bot args" into "/cmd" and "bot".
func parseCommand(text string) (cmd, target string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}

	cmd, target, _ = strings.Cut(strings.ToLower(fields[0]), "@")
	return cmd, target
}
