package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dskvich/groq-telegram-bot/pkg/api/response"
	"github.com/dskvich/groq-telegram-bot/pkg/domain"
	"github.com/dskvich/groq-telegram-bot/pkg/logger"
)

type CompletionProvider interface {
	GenerateSingleResponse(ctx context.Context, prompt string) (string, error)
}

type completion struct {
	provider CompletionProvider
	writer   response.JSONResponseWriter
}

func NewCompletion(provider CompletionProvider) *completion {
	return &completion{
		provider: provider,
		writer:   response.JSONResponseWriter{},
	}
}

// Complete answers a single prompt without touching any chat history.
func (c *completion) Complete(w http.ResponseWriter, r *http.Request) {
	prompt := r.URL.Query().Get("prompt")

	resp, err := c.provider.GenerateSingleResponse(r.Context(), prompt)
	switch {
	case errors.Is(err, domain.ErrEmptyPrompt):
		c.writer.WriteErrorResponse(w, http.StatusBadRequest, "Prompt parameter is missing or empty.")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Generating single response", logger.Err(err))
		c.writer.WriteErrorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	c.writer.WriteSuccessResponse(w, map[string]string{
		"response": resp,
	})
}
