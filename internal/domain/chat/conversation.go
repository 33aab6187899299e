package chat

import (
	"sync"
	"time"

	"github.com/adolfohrq/prdgen/internal/domain/generation"
	"github.com/adolfohrq/prdgen/internal/infra/llm"
)

// State is the position of a conversation in its turn cycle.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
)

// Message is one entry of a conversation. Messages are append-only and strictly
// timestamp-increasing within a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      llm.Role  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	ImageMIME string    `json:"imageMimeType,omitempty"`
	Image     []byte    `json:"image,omitempty"`
	// Action is set on model messages whose reply carried the action marker.
	Action bool `json:"action,omitempty"`
}

// Conversation is a view of a conversation at one point in time.
type Conversation struct {
	ID            string                `json:"id"`
	Persona       PersonaID             `json:"persona"`
	Section       generation.SectionKey `json:"section,omitempty"`
	State         State                 `json:"state"`
	ActionPending bool                  `json:"actionPending"`
	Document      *generation.Document  `json:"document,omitempty"`
	Messages      []Message             `json:"messages"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// thread is the mutable conversation guarded by its own mutex.
type thread struct {
	mu            sync.Mutex
	id            string
	persona       Persona
	section       generation.SectionKey
	state         State
	actionPending bool
	document      *generation.Document
	messages      []Message
	createdAt     time.Time
}

// nextTimestamp returns now, bumped past the last message so ordering stays strict.
func (t *thread) nextTimestamp(now time.Time) time.Time {
	if n := len(t.messages); n > 0 {
		if last := t.messages[n-1].Timestamp; !now.After(last) {
			return last.Add(time.Nanosecond)
		}
	}
	return now
}

// view copies the thread; callers must hold t.mu.
func (t *thread) view() Conversation {
	msgs := make([]Message, len(t.messages))
	copy(msgs, t.messages)
	return Conversation{
		ID:            t.id,
		Persona:       t.persona.ID,
		Section:       t.section,
		State:         t.state,
		ActionPending: t.actionPending,
		Document:      t.document.Clone(),
		Messages:      msgs,
		CreatedAt:     t.createdAt,
	}
}

// window returns the last max messages as provider turns, starting on a user turn.
func (t *thread) window(max int) []llm.Turn {
	msgs := t.messages
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	for len(msgs) > 0 && msgs[0].Role != llm.RoleUser {
		msgs = msgs[1:]
	}
	turns := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		turn := llm.Turn{Role: m.Role, Text: m.Text}
		if len(m.Image) > 0 {
			turn.Image = &llm.Image{MimeType: m.ImageMIME, Data: m.Image}
		}
		turns = append(turns, turn)
	}
	return turns
}

// transcript renders the full conversation as plain text for refinement prompts.
func (t *thread) transcript() string {
	b := make([]byte, 0, 256)
	for _, m := range t.messages {
		b = append(b, m.Role...)
		b = append(b, ": "...)
		b = append(b, m.Text...)
		b = append(b, '\n')
	}
	return string(b)
}
