package domain

type GateDecision int

const (
	Drop GateDecision = iota
	Respond
)

func (d GateDecision) String() string {
	if d == Respond {
		return "respond"
	}
	return "drop"
}

type GateInput struct {
	ChatKind     ChatKind
	Text         string
	BotHandle    string
	IsReplyToBot bool
	HasImage     bool
}
