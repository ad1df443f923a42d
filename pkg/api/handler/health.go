package handler

import (
	"net/http"

	"github.com/dskvich/groq-telegram-bot/pkg/api/response"
)

func Health(w http.ResponseWriter, _ *http.Request) {
	writer := response.JSONResponseWriter{}
	writer.WriteSuccessResponse(w, map[string]string{"status": "ok"})
}
