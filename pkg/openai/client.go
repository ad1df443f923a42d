package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "meta-llama/llama-4-scout-17b-16e-instruct"
	DefaultTemperature = 0.6
	DefaultTimeout     = 60 * time.Second
)

type Config struct {
	Token   string
	BaseURL string
	Model   string
	// Temperature of 0 leaves sampling to the backend default.
	Temperature float32
	Timeout     time.Duration
}

type client struct {
	api         *goopenai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

func NewClient(cfg Config) (*client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	apiCfg := goopenai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &client{
		api:         goopenai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

// Complete sends the conversation to the backend. Failures are reported in
// the returned Completion and never as a Go error.
func (c *client) Complete(ctx context.Context, turns []domain.Turn) domain.Completion {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.DebugContext(ctx, "Requesting chat completion", "model", c.model, "turns", len(turns))

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(turns),
		Temperature: c.temperature,
	})
	if err != nil {
		return domain.CompletionFailed(classify(err), err)
	}

	if len(resp.Choices) == 0 {
		return domain.CompletionFailed(domain.BackendProtocolError, domain.ErrNoChoices)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return domain.CompletionFailed(domain.BackendProtocolError, domain.ErrEmptyCompletion)
	}

	slog.DebugContext(ctx, "Chat completion received",
		"finishReason", resp.Choices[0].FinishReason,
		"promptTokens", resp.Usage.PromptTokens,
		"completionTokens", resp.Usage.CompletionTokens,
	)

	return domain.Completion{Text: content}
}

// GenerateSingleResponse completes a single prompt without any history.
func (c *client) GenerateSingleResponse(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.ErrEmptyPrompt
	}

	completion := c.Complete(ctx, []domain.Turn{{Role: domain.RoleUser, Text: prompt}})
	if !completion.OK() {
		return "", completion.Err
	}

	return completion.Text, nil
}

func toChatMessages(turns []domain.Turn) []goopenai.ChatCompletionMessage {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msg := goopenai.ChatCompletionMessage{Role: string(t.Role)}

		if !t.IsMultiPart() {
			msg.Content = t.Text
			messages = append(messages, msg)
			continue
		}

		for _, p := range t.Parts {
			switch p.Type {
			case domain.ContentPartTypeText:
				msg.MultiContent = append(msg.MultiContent, goopenai.ChatMessagePart{
					Type: goopenai.ChatMessagePartTypeText,
					Text: p.Text,
				})
			case domain.ContentPartTypeImage:
				msg.MultiContent = append(msg.MultiContent, goopenai.ChatMessagePart{
					Type:     goopenai.ChatMessagePartTypeImageURL,
					ImageURL: &goopenai.ChatMessageImageURL{URL: p.ImageURL},
				})
			}
		}
		messages = append(messages, msg)
	}
	return messages
}

func classify(err error) domain.BackendErrorKind {
	var (
		apiErr *goopenai.APIError
		reqErr *goopenai.RequestError
		netErr net.Error
		urlErr *url.Error
	)

	switch {
	case errors.As(err, &apiErr):
		return domain.BackendLogicError
	case errors.As(err, &reqErr):
		return domain.BackendProtocolError
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr),
		errors.As(err, &urlErr):
		return domain.BackendTransportError
	default:
		return domain.BackendProtocolError
	}
}
