package auth

import (
	"log/slog"

	"github.com/samber/lo"
)

type authenticator struct {
	allowedChatIDs []int64
}

// NewAuthenticator restricts the bot to the given chats. An empty list lets
// every chat through.
func NewAuthenticator(allowedChatIDs []int64) *authenticator {
	if len(allowedChatIDs) == 0 {
		slog.Info("telegram chat allowlist is empty, serving all chats")
	} else {
		slog.Info("telegram allowed chat IDs", "chat_ids", allowedChatIDs)
	}

	return &authenticator{
		allowedChatIDs: allowedChatIDs,
	}
}

func (a *authenticator) IsAuthorized(chatID int64) bool {
	return len(a.allowedChatIDs) == 0 || lo.Contains(a.allowedChatIDs, chatID)
}
