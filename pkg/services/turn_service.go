package services

import (
	"context"
	"log/slog"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
	"github.com/dskvich/groq-telegram-bot/pkg/logger"
)

type HistoryStore interface {
	Lock(chatID domain.ChatID) (unlock func())
	AppendUser(chatID domain.ChatID, parts []domain.ContentPart)
	AppendUserText(chatID domain.ChatID, text string)
	AppendAssistant(chatID domain.ChatID, text string)
	Snapshot(chatID domain.ChatID) []domain.Turn
}

type ContentAssembler interface {
	Assemble(ctx context.Context, event domain.InboundEvent, userText string) ([]domain.ContentPart, error)
}

type Completer interface {
	Complete(ctx context.Context, turns []domain.Turn) domain.Completion
}

type Typist interface {
	StartTyping(ctx context.Context, chatID int64)
}

type turnService struct {
	history        HistoryStore
	assembler      ContentAssembler
	completer      Completer
	typist         Typist
	botHandle      string
	supportsImages bool
	responseCh     chan<- domain.Response
}

func NewTurnService(
	history HistoryStore,
	assembler ContentAssembler,
	completer Completer,
	typist Typist,
	botHandle string,
	supportsImages bool,
	responseCh chan<- domain.Response,
) *turnService {
	return &turnService{
		history:        history,
		assembler:      assembler,
		completer:      completer,
		typist:         typist,
		botHandle:      botHandle,
		supportsImages: supportsImages,
		responseCh:     responseCh,
	}
}

// HandleEvent runs one inbound message through gate, assembly, history and
// the backend, and emits the reply. Dropped messages leave no trace.
func (t *turnService) HandleEvent(ctx context.Context, event domain.InboundEvent) {
	rawText := event.RawText()

	decision := Gate(domain.GateInput{
		ChatKind:     event.ChatKind,
		Text:         rawText,
		BotHandle:    t.botHandle,
		IsReplyToBot: event.IsReplyToBot(),
		HasImage:     t.supportsImages && event.HasPhoto(),
	})
	if decision == domain.Drop {
		slog.DebugContext(ctx, "Message dropped by gate", "chatID", event.ChatID, "chatKind", event.ChatKind)
		return
	}

	parts, err := t.assembler.Assemble(ctx, event, StripMention(rawText, t.botHandle))
	if err != nil {
		slog.ErrorContext(ctx, "Assembling message content", "chatID", event.ChatID, logger.Err(err))
		return
	}
	if len(parts) == 0 {
		slog.DebugContext(ctx, "Nothing to send", "chatID", event.ChatID)
		return
	}

	unlock := t.history.Lock(event.ChatID)
	defer unlock()

	if t.supportsImages {
		t.history.AppendUser(event.ChatID, parts)
	} else {
		t.history.AppendUserText(event.ChatID, domain.Turn{Parts: parts}.TextContent())
	}

	t.typist.StartTyping(ctx, event.ChatID)

	turns := t.history.Snapshot(event.ChatID)
	slog.InfoContext(ctx, "Calling backend for chat completion", "chatID", event.ChatID, "turns", len(turns))

	completion := t.completer.Complete(ctx, turns)
	if !completion.OK() {
		slog.ErrorContext(ctx, "Chat completion failed", "chatID", event.ChatID, "kind", completion.Err.Kind, logger.Err(completion.Err))
	}

	reply := FormatCompletion(completion)
	t.history.AppendAssistant(event.ChatID, reply)

	send(ctx, t.responseCh, domain.Response{
		ChatID:           event.ChatID,
		ReplyToMessageID: event.MessageID,
		Text:             reply,
	})
}

func send(ctx context.Context, ch chan<- domain.Response, resp domain.Response) {
	select {
	case ch <- resp:
	case <-ctx.Done():
		slog.WarnContext(ctx, "Response dropped on shutdown", "chatID", resp.ChatID)
	}
}
