package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
)

type fakeDownloader struct {
	files     map[string][]byte
	requested []string
}

func (f *fakeDownloader) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	f.requested = append(f.requested, fileID)
	data, ok := f.files[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

type fakeCompleter struct {
	mu         sync.Mutex
	completion domain.Completion
	calls      [][]domain.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, turns []domain.Turn) domain.Completion {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, turns)
	return f.completion
}

type fakeTypist struct {
	chats []int64
}

func (f *fakeTypist) StartTyping(_ context.Context, chatID int64) {
	f.chats = append(f.chats, chatID)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}
