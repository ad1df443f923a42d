package services

import (
	"fmt"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

// FormatCompletion turns a backend result into the text shown to the user and
// recorded in history.
func FormatCompletion(c domain.Completion) string {
	if c.OK() {
		return c.Text
	}
	return fmt.Sprintf("%s LLM error: %v", domain.ErrorMarker, c.Err)
}
