package domain

type ChatID = int64

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation. Parts is set for multi-part user
// content; otherwise Text holds the whole content.
type Turn struct {
	Role  Role
	Text  string
	Parts []ContentPart
}

func (t Turn) IsMultiPart() bool {
	return t.Parts != nil
}

// TextContent returns the plain text of the turn, joining the text parts of
// multi-part content.
func (t Turn) TextContent() string {
	if !t.IsMultiPart() {
		return t.Text
	}

	var text string
	for _, p := range t.Parts {
		if p.Type != ContentPartTypeText {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += p.Text
	}
	return text
}
