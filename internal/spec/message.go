package spec

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// Message is one transcript entry. Entries are never mutated after insertion.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Transcript is an append-only list of messages.
type Transcript struct {
	msgs []Message
}

// NewTranscript creates a transcript seeded with existing messages.
func NewTranscript(msgs ...Message) *Transcript {
	t := &Transcript{}
	t.msgs = append(t.msgs, msgs...)
	return t
}

// Append adds a message to the end.
func (t *Transcript) Append(m Message) {
	t.msgs = append(t.msgs, m)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.msgs)
}

// Messages returns a copy of all messages in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	if len(t.msgs) == 0 {
		return Message{}, false
	}
	return t.msgs[len(t.msgs)-1], true
}
