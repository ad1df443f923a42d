package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dskvich/groq-telegram-bot/pkg/domain"
	"github.com/dskvich/groq-telegram-bot/pkg/imaging"
)

type QuoteTemplate string

const (
	QuoteTemplateContext QuoteTemplate = "context"
	QuoteTemplateQuoted  QuoteTemplate = "quoted"
)

func (q QuoteTemplate) Validate() error {
	switch q {
	case QuoteTemplateContext, QuoteTemplateQuoted:
		return nil
	default:
		return fmt.Errorf("unknown quote template %q", q)
	}
}

// Format wraps the user text with the message it replies to.
func (q QuoteTemplate) Format(quoted, text string) string {
	if q == QuoteTemplateQuoted {
		return "Quoted message:\n" + quoted + "\n\nUser reply:\n" + text
	}
	return "Context:\n" + quoted + "\n\nUser:\n" + text
}

type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type contentAssembler struct {
	downloader     FileDownloader
	template       QuoteTemplate
	supportsImages bool
}

func NewContentAssembler(downloader FileDownloader, template QuoteTemplate, supportsImages bool) *contentAssembler {
	return &contentAssembler{
		downloader:     downloader,
		template:       template,
		supportsImages: supportsImages,
	}
}

// Assemble builds the content parts of a user turn from the event and the
// mention-stripped user text. An empty result means there is nothing to send.
func (a *contentAssembler) Assemble(ctx context.Context, event domain.InboundEvent, userText string) ([]domain.ContentPart, error) {
	var parts []domain.ContentPart

	text := strings.TrimSpace(userText)
	if quoted := event.ReplyTo.Content(); quoted != "" {
		text = a.template.Format(quoted, text)
	}
	if text != "" {
		parts = append(parts, domain.NewTextPart(text))
	}

	if a.supportsImages && event.HasPhoto() {
		photo := LargestPhoto(event.Photos)

		data, err := a.downloader.DownloadFile(ctx, photo.FileID)
		if err != nil {
			return nil, fmt.Errorf("downloading photo: %w", err)
		}

		jpegData, err := imaging.ToJPEG(data)
		if err != nil {
			return nil, fmt.Errorf("normalizing photo: %w", err)
		}

		parts = append(parts, domain.NewImagePart(imaging.DataURI(jpegData)))
	}

	return parts, nil
}

// LargestPhoto picks the variant with the most pixels, breaking ties by file size.
func LargestPhoto(sizes []domain.PhotoSize) domain.PhotoSize {
	return lo.MaxBy(sizes, func(a, b domain.PhotoSize) bool {
		areaA, areaB := a.Width*a.Height, b.Width*b.Height
		if areaA != areaB {
			return areaA > areaB
		}
		return a.FileSize > b.FileSize
	})
}
