package domain

type ChatKind string

const (
	ChatKindPrivate ChatKind = "private"
	ChatKindGroup   ChatKind = "group"
)

// InboundEvent is a chat message normalised from the platform update.
type InboundEvent struct {
	ChatID    ChatID
	ChatKind  ChatKind
	MessageID int
	Text      string
	Caption   string
	ReplyTo   *QuotedMessage
	Photos    []PhotoSize
}

type QuotedMessage struct {
	Text    string
	Caption string
	FromBot bool
}

// PhotoSize is one of the resolutions the platform offers for a photo.
type PhotoSize struct {
	FileID   string
	Width    int
	Height   int
	FileSize int
}

// RawText returns the message text, or the caption for media messages.
func (e InboundEvent) RawText() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Caption
}

func (e InboundEvent) IsReplyToBot() bool {
	return e.ReplyTo != nil && e.ReplyTo.FromBot
}

func (e InboundEvent) HasPhoto() bool {
	return len(e.Photos) > 0
}

func (q *QuotedMessage) Content() string {
	if q == nil {
		return ""
	}
	if q.Text != "" {
		return q.Text
	}
	return q.Caption
}
