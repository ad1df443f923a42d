package domain

type ContentPartType string

const (
	ContentPartTypeText  ContentPartType = "text"
	ContentPartTypeImage ContentPartType = "image"
)

type ContentPart struct {
	Type     ContentPartType
	Text     string
	ImageURL string
}

func NewTextPart(text string) ContentPart {
	return ContentPart{Type: ContentPartTypeText, Text: text}
}

func NewImagePart(url string) ContentPart {
	return ContentPart{Type: ContentPartTypeImage, ImageURL: url}
}
