package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

const testPrompt = "you are a test"

func textParts(text string) []domain.ContentPart {
	return []domain.ContentPart{domain.NewTextPart(text)}
}

func TestChatRepository_SnapshotOfUnknownChat(t *testing.T) {
	repo := NewChatRepository(testPrompt, 10, 0)

	got := repo.Snapshot(1)
	if len(got) != 1 {
		t.Fatalf("expected only the system turn, got %d turns", len(got))
	}
	if got[0].Role != domain.RoleSystem || got[0].Text != testPrompt {
		t.Errorf("unexpected system turn: %+v", got[0])
	}
}

func TestChatRepository_WindowBound(t *testing.T) {
	for _, pairs := range []int{0, 1, 4, 5, 6, 20} {
		t.Run(fmt.Sprintf("%d pairs", pairs), func(t *testing.T) {
			repo := NewChatRepository(testPrompt, 10, 0)

			for i := 0; i < pairs; i++ {
				repo.AppendUser(1, textParts(fmt.Sprintf("q%d", i)))
				if got := len(repo.Snapshot(1)) - 1; got > 10 {
					t.Fatalf("after user turn %d: %d non-system turns", i, got)
				}
				repo.AppendAssistant(1, fmt.Sprintf("a%d", i))
				if got := len(repo.Snapshot(1)) - 1; got > 10 {
					t.Fatalf("after assistant turn %d: %d non-system turns", i, got)
				}
			}

			snapshot := repo.Snapshot(1)
			want := min(2*pairs, 10)
			if len(snapshot)-1 != want {
				t.Fatalf("expected %d non-system turns, got %d", want, len(snapshot)-1)
			}

			// The most recent turns survive, oldest first.
			for i, turn := range snapshot[1:] {
				n := 2*pairs - want + i
				wantText := fmt.Sprintf("a%d", n/2)
				if n%2 == 0 {
					wantText = fmt.Sprintf("q%d", n/2)
				}
				if turn.TextContent() != wantText {
					t.Errorf("turn %d: expected %q, got %q", i, wantText, turn.TextContent())
				}
			}
		})
	}
}

func TestChatRepository_SystemPromptPinned(t *testing.T) {
	repo := NewChatRepository(testPrompt, 3, 0)

	for i := 0; i < 25; i++ {
		repo.AppendUser(7, textParts("hello"))
		repo.AppendAssistant(7, "hi")

		snapshot := repo.Snapshot(7)
		if snapshot[0].Role != domain.RoleSystem {
			t.Fatalf("iteration %d: first role is %q", i, snapshot[0].Role)
		}
		if snapshot[0].Text != testPrompt {
			t.Fatalf("iteration %d: system prompt is %q", i, snapshot[0].Text)
		}
		for _, turn := range snapshot[1:] {
			if turn.Role == domain.RoleSystem {
				t.Fatalf("iteration %d: system turn outside index 0", i)
			}
		}
	}
}

func TestChatRepository_ClearReseeds(t *testing.T) {
	repo := NewChatRepository(testPrompt, 10, 0)
	repo.AppendUser(1, textParts("hello"))
	repo.AppendAssistant(1, "hi")

	repo.Clear(1)

	if got := repo.Snapshot(1); len(got) != 1 || got[0].Role != domain.RoleSystem {
		t.Fatalf("expected only the system turn after clear, got %+v", got)
	}

	repo.Clear(1)
	repo.AppendUser(1, textParts("again"))

	got := repo.Snapshot(1)
	if len(got) != 2 {
		t.Fatalf("expected 2 turns after reseeding, got %d", len(got))
	}
	if got[0].Text != testPrompt || got[1].TextContent() != "again" {
		t.Errorf("unexpected turns after reseeding: %+v", got)
	}
}

func TestChatRepository_ClearKeepsOtherChats(t *testing.T) {
	repo := NewChatRepository(testPrompt, 10, 0)
	repo.AppendUser(1, textParts("one"))
	repo.AppendUser(2, textParts("two"))

	repo.Clear(1)

	if got := len(repo.Snapshot(2)); got != 2 {
		t.Errorf("expected chat 2 untouched, got %d turns", got)
	}
}

func TestChatRepository_SnapshotIsCopy(t *testing.T) {
	repo := NewChatRepository(testPrompt, 10, 0)
	repo.AppendUserText(1, "hello")

	snapshot := repo.Snapshot(1)
	snapshot[1].Text = "changed"

	if got := repo.Snapshot(1)[1].Text; got != "hello" {
		t.Errorf("stored turn was modified through snapshot: %q", got)
	}
}

func TestChatRepository_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := NewChatRepository(testPrompt, 10, 15*time.Minute)
	repo.now = func() time.Time { return now }

	repo.AppendUser(1, textParts("hello"))
	repo.AppendAssistant(1, "hi")

	now = now.Add(10 * time.Minute)
	if got := len(repo.Snapshot(1)); got != 3 {
		t.Fatalf("expected conversation alive before ttl, got %d turns", got)
	}

	now = now.Add(16 * time.Minute)
	if got := len(repo.Snapshot(1)); got != 1 {
		t.Fatalf("expected expired conversation, got %d turns", got)
	}

	repo.AppendUser(1, textParts("new"))
	if got := repo.Snapshot(1); len(got) != 2 || got[1].TextContent() != "new" {
		t.Errorf("unexpected turns after expiry: %+v", got)
	}
}

func TestChatRepository_LockSerialisesSameChat(t *testing.T) {
	repo := NewChatRepository(testPrompt, 1000, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := repo.Lock(1)
			defer unlock()

			repo.AppendUserText(1, fmt.Sprintf("q%d", i))
			repo.AppendAssistant(1, fmt.Sprintf("a%d", i))
		}(i)
	}
	wg.Wait()

	turns := repo.Snapshot(1)[1:]
	if len(turns) != 100 {
		t.Fatalf("expected 100 turns, got %d", len(turns))
	}
	for i := 0; i < len(turns); i += 2 {
		q, a := turns[i], turns[i+1]
		if q.Role != domain.RoleUser || a.Role != domain.RoleAssistant {
			t.Fatalf("turns %d/%d interleaved: %q %q", i, i+1, q.Role, a.Role)
		}
		if q.Text[1:] != a.Text[1:] {
			t.Fatalf("pair %d mismatched: %q %q", i/2, q.Text, a.Text)
		}
	}
}

func TestChatRepository_LockIndependentChats(t *testing.T) {
	repo := NewChatRepository(testPrompt, 10, 0)

	unlock := repo.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		release := repo.Lock(2)
		release()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("locking chat 2 blocked on chat 1")
	}
}

func TestChatRepository_TTLDoesNotSplitTurn(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := NewChatRepository(testPrompt, 10, time.Minute)
	repo.now = func() time.Time { return now }

	unlock := repo.Lock(1)
	repo.AppendUserText(1, "slow question")
	now = now.Add(2 * time.Minute)
	repo.AppendAssistant(1, "late answer")
	unlock()

	got := repo.Snapshot(1)
	if len(got) != 3 {
		t.Fatalf("expected system, user and assistant turns, got %+v", got)
	}
	if got[1].Role != domain.RoleUser || got[1].Text != "slow question" {
		t.Errorf("user turn lost: %+v", got[1])
	}
	if got[2].Role != domain.RoleAssistant || got[2].Text != "late answer" {
		t.Errorf("unexpected assistant turn: %+v", got[2])
	}
}
