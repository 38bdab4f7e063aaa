package chat

import (
	"io"

	"warehousebot/internal/domain"
)

type Kind int

const (
	Selection Kind = iota + 1
	Text
	Attachment
)

func (k Kind) String() string {
	switch k {
	case Selection:
		return "selection"
	case Text:
		return "text"
	case Attachment:
		return "attachment"
	}
	return "unknown"
}

// ParseKind maps the transport's kind name to a Kind; unknown names give 0.
func ParseKind(s string) Kind {
	switch s {
	case "selection":
		return Selection
	case "text":
		return Text
	case "attachment":
		return Attachment
	}
	return 0
}

// Event is one inbound action from an actor. Tag is set for selections, Text
// for free text, File and Ext for attachments.
type Event struct {
	Actor domain.Actor
	Kind  Kind
	Tag   string
	Text  string
	File  io.Reader
	Ext   string
}

type Button struct {
	Label string `json:"label"`
	Tag   string `json:"tag"`
}

// Reply is what the transport renders back: a message, rows of buttons and,
// for image listings, stored image paths.
type Reply struct {
	Text    string     `json:"text"`
	Buttons [][]Button `json:"buttons,omitempty"`
	Images  []string   `json:"images,omitempty"`
	// Stale marks an event that did not match the actor's current step and
	// changed nothing.
	Stale bool `json:"stale,omitempty"`
}

func row(b ...Button) []Button { return b }

func btn(label, tag string) Button { return Button{Label: label, Tag: tag} }
