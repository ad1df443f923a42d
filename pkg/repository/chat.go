package repository

import (
	"sync"
	"time"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

const DefaultWindow = 10

type conversation struct {
	// turnMu serialises whole request/response turns for the chat.
	turnMu sync.Mutex

	mu         sync.Mutex
	turns      []domain.Turn
	lastUpdate time.Time
}

type chatRepository struct {
	mu           sync.RWMutex
	chats        map[domain.ChatID]*conversation
	systemPrompt string
	window       int
	ttl          time.Duration
	now          func() time.Time
}

// NewChatRepository creates an in-memory history store. Every stored
// conversation keeps the system turn at index 0 and at most window other
// turns. A positive ttl expires conversations idle for longer than ttl.
func NewChatRepository(systemPrompt string, window int, ttl time.Duration) *chatRepository {
	if window <= 0 {
		window = DefaultWindow
	}
	return &chatRepository{
		chats:        make(map[domain.ChatID]*conversation),
		systemPrompt: systemPrompt,
		window:       window,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Lock blocks until the caller owns the chat, and returns the release func.
// Chats are locked independently of each other.
func (c *chatRepository) Lock(chatID domain.ChatID) (unlock func()) {
	conv := c.getOrCreate(chatID)
	conv.turnMu.Lock()
	return conv.turnMu.Unlock
}

func (c *chatRepository) AppendUser(chatID domain.ChatID, parts []domain.ContentPart) {
	turn := domain.Turn{Role: domain.RoleUser, Parts: append([]domain.ContentPart(nil), parts...)}
	c.append(chatID, turn, true)
}

func (c *chatRepository) AppendUserText(chatID domain.ChatID, text string) {
	c.append(chatID, domain.Turn{Role: domain.RoleUser, Text: text}, true)
}

// AppendAssistant never expires the conversation; the answer always lands
// next to its user turn.
func (c *chatRepository) AppendAssistant(chatID domain.ChatID, text string) {
	c.append(chatID, domain.Turn{Role: domain.RoleAssistant, Text: text}, false)
}

// Snapshot returns a copy of the turns to send to the backend, system turn
// first. Unknown and cleared chats yield only the system turn.
func (c *chatRepository) Snapshot(chatID domain.ChatID) []domain.Turn {
	c.mu.RLock()
	conv, ok := c.chats[chatID]
	c.mu.RUnlock()

	if !ok {
		return []domain.Turn{c.systemTurn()}
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if len(conv.turns) == 0 || c.expiredLocked(conv) {
		return []domain.Turn{c.systemTurn()}
	}

	snapshot := make([]domain.Turn, len(conv.turns))
	copy(snapshot, conv.turns)
	return snapshot
}

// Clear resets the conversation. The next append reseeds the system turn.
func (c *chatRepository) Clear(chatID domain.ChatID) {
	c.mu.RLock()
	conv, ok := c.chats[chatID]
	c.mu.RUnlock()

	if !ok {
		return
	}

	conv.mu.Lock()
	conv.turns = nil
	conv.mu.Unlock()
}

func (c *chatRepository) append(chatID domain.ChatID, turn domain.Turn, startsTurn bool) {
	conv := c.getOrCreate(chatID)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	if startsTurn && c.expiredLocked(conv) {
		conv.turns = nil
	}
	if len(conv.turns) == 0 {
		conv.turns = []domain.Turn{c.systemTurn()}
	}

	conv.turns = append(conv.turns, turn)
	if extra := len(conv.turns) - 1 - c.window; extra > 0 {
		trimmed := make([]domain.Turn, 0, c.window+1)
		trimmed = append(trimmed, conv.turns[0])
		trimmed = append(trimmed, conv.turns[1+extra:]...)
		conv.turns = trimmed
	}
	conv.lastUpdate = c.now()
}

func (c *chatRepository) getOrCreate(chatID domain.ChatID) *conversation {
	c.mu.RLock()
	conv, ok := c.chats[chatID]
	c.mu.RUnlock()
	if ok {
		return conv
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if conv, ok = c.chats[chatID]; !ok {
		conv = &conversation{}
		c.chats[chatID] = conv
	}
	return conv
}

// expiredLocked reports whether the conversation has been idle past the ttl.
// conv.mu must be held.
func (c *chatRepository) expiredLocked(conv *conversation) bool {
	if c.ttl <= 0 || len(conv.turns) == 0 {
		return false
	}
	return c.now().Sub(conv.lastUpdate) > c.ttl
}

func (c *chatRepository) systemTurn() domain.Turn {
	return domain.Turn{Role: domain.RoleSystem, Text: c.systemPrompt}
}
