package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
	"github.com/dskvich/groq-telegram-bot/pkg/logger"
)

const DefaultPoolSize = 10

type Handler interface {
	HandleUpdate(ctx context.Context, update *tgbotapi.Update)
}

type Authenticator interface {
	IsAuthorized(chatID int64) bool
}

type TelegramClient interface {
	GetUpdates() tgbotapi.UpdatesChannel
	StopUpdates()
	SendResponse(ctx context.Context, response *domain.Response)
}

type telegramUpdateListener struct {
	client        TelegramClient
	authenticator Authenticator
	handler       Handler
	responseCh    <-chan domain.Response
	sem           chan struct{}
	wg            sync.WaitGroup

	mu sync.Mutex
	// pending holds the queued updates of every chat that has a runner.
	pending map[int64][]tgbotapi.Update
}

// NewTelegramUpdateListener handles the updates of each chat in order, one at
// a time, with at most poolSize chats in progress at once.
func NewTelegramUpdateListener(
	client TelegramClient,
	authenticator Authenticator,
	handler Handler,
	responseCh <-chan domain.Response,
	poolSize int,
) (*telegramUpdateListener, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &telegramUpdateListener{
		client:        client,
		authenticator: authenticator,
		handler:       handler,
		responseCh:    responseCh,
		sem:           make(chan struct{}, poolSize),
		pending:       make(map[int64][]tgbotapi.Update),
	}, nil
}

func (t *telegramUpdateListener) Name() string { return "telegram_listener_worker" }

func (t *telegramUpdateListener) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", t.Name())
	defer slog.Info("Worker stopped", "name", t.Name())

	updates := t.client.GetUpdates()

	for {
		select {
		case <-ctx.Done():
			t.client.StopUpdates()
			t.drain(ctx)
			return nil
		case update, ok := <-updates:
			if !ok {
				t.drain(ctx)
				return nil
			}
			t.dispatch(ctx, update)
		case response := <-t.responseCh:
			t.client.SendResponse(ctx, &response)
		}
	}
}

// dispatch queues the update behind earlier ones of the same chat, or starts
// a runner for the chat.
func (t *telegramUpdateListener) dispatch(ctx context.Context, update tgbotapi.Update) {
	chatID := chatIDOf(&update)

	t.mu.Lock()
	if queue, running := t.pending[chatID]; running {
		t.pending[chatID] = append(queue, update)
		t.mu.Unlock()
		return
	}
	t.pending[chatID] = nil
	t.mu.Unlock()

	t.wg.Add(1)
	go t.runChat(ctx, chatID, update)
}

// runChat processes the chat's updates until its queue is empty. A pool slot
// is held only while an update is processed, never while waiting for the next.
func (t *telegramUpdateListener) runChat(ctx context.Context, chatID int64, update tgbotapi.Update) {
	defer t.wg.Done()

	for {
		if t.acquire(ctx) {
			t.processUpdate(ctx, &update)
			t.release()
		}

		t.mu.Lock()
		queue := t.pending[chatID]
		if len(queue) == 0 {
			delete(t.pending, chatID)
			t.mu.Unlock()
			return
		}
		update, t.pending[chatID] = queue[0], queue[1:]
		t.mu.Unlock()
	}
}

func chatIDOf(update *tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID
	}
	return 0
}

// drain keeps delivering responses until in-flight updates are finished.
func (t *telegramUpdateListener) drain(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			return
		case response := <-t.responseCh:
			t.client.SendResponse(ctx, &response)
		}
	}
}

func (t *telegramUpdateListener) acquire(ctx context.Context) bool {
	select {
	case t.sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (t *telegramUpdateListener) release() {
	<-t.sem
}

func (t *telegramUpdateListener) processUpdate(ctx context.Context, update *tgbotapi.Update) {
	ctx = logger.ContextWithRequestID(ctx, update.UpdateID)

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		slog.DebugContext(ctx, "Ignoring update without message")
		return
	}

	slog.InfoContext(ctx, "Processing update", "chatID", msg.Chat.ID, "chatType", msg.Chat.Type)

	if !t.authenticator.IsAuthorized(msg.Chat.ID) {
		slog.WarnContext(ctx, "Unauthorized access attempt", "chatID", msg.Chat.ID)
		if msg.Chat.IsPrivate() {
			t.client.SendResponse(ctx, &domain.Response{
				ChatID: msg.Chat.ID,
				Text:   fmt.Sprintf("Chat %d is not authorized", msg.Chat.ID),
			})
		}
		return
	}

	t.handler.HandleUpdate(ctx, update)
}
