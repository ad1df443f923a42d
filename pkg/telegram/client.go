package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
	"github.com/dskvich/groq-telegram-bot/pkg/logger"
	"github.com/dskvich/groq-telegram-bot/pkg/render"
)

// Telegram rejects messages over 4096 characters; rendered markup needs headroom.
const maxMessageRunes = 3500

type client struct {
	bot            *tgbotapi.BotAPI
	updatesCh      tgbotapi.UpdatesChannel
	renderMarkdown bool
}

func NewClient(token string, renderMarkdown bool) (*client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating bot api instance: %w", err)
	}

	slog.Info("authorized on telegram", "account", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	return &client{
		bot:            bot,
		updatesCh:      bot.GetUpdatesChan(u),
		renderMarkdown: renderMarkdown,
	}, nil
}

func (c *client) GetUpdates() tgbotapi.UpdatesChannel {
	return c.updatesCh
}

func (c *client) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

// Self returns the bot account, used for mention and reply detection.
func (c *client) Self() tgbotapi.User {
	return c.bot.Self
}

func (c *client) StartTyping(ctx context.Context, chatID int64) {
	if _, err := c.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		slog.WarnContext(ctx, "sending typing action", "chatID", chatID, logger.Err(err))
	}
}

func (c *client) SendResponse(ctx context.Context, response *domain.Response) {
	text := response.Text
	if response.Err != nil {
		text = fmt.Sprintf("%s %v", domain.ErrorMarker, response.Err)
	}

	for i, chunk := range splitMessage(text, maxMessageRunes) {
		replyTo := 0
		if i == 0 {
			replyTo = response.ReplyToMessageID
		}
		if err := c.sendText(ctx, response.ChatID, replyTo, chunk); err != nil {
			slog.ErrorContext(ctx, "sending message", "chatID", response.ChatID, logger.Err(err))
			return
		}
	}
}

// sendText sends rendered markup first and falls back to plain text when
// Telegram refuses to parse it.
func (c *client) sendText(ctx context.Context, chatID int64, replyTo int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	msg.AllowSendingWithoutReply = true

	if c.renderMarkdown {
		rendered := msg
		rendered.Text = render.ToHTML(text)
		rendered.ParseMode = tgbotapi.ModeHTML

		if rendered.Text != "" {
			_, err := c.bot.Send(rendered)
			if err == nil {
				return nil
			}
			slog.WarnContext(ctx, "sending rendered message, retrying as plain text", "chatID", chatID, logger.Err(err))
		}
	}

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}

func (c *client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	link, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("getting file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.bot.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if closeErr := Body.Close(); closeErr != nil {
			slog.Error("closing body", logger.Err(closeErr))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return data, nil
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	var chunks []string

	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}

	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
