package chat

import (
	"sync"
	"time"
)

// Role tags who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one line of the conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Navigation asks the host UI to move to Path once Delay has elapsed.
type Navigation struct {
	Path  string        `json:"path"`
	Delay time.Duration `json:"delay"`
}

// Reply is everything one utterance produced, in display order.
type Reply struct {
	Messages   []Message
	Navigation *Navigation
}

// MessageSink receives conversation messages for display. Posts arrive in
// conversation order.
type MessageSink interface {
	Post(role Role, text string)
}

// SinkFunc adapts a function to MessageSink.
type SinkFunc func(role Role, text string)

// Post calls f.
func (f SinkFunc) Post(role Role, text string) { f(role, text) }

// Transcript is a MessageSink that keeps every message in memory.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
}

// Post appends a message.
func (t *Transcript) Post(role Role, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, Message{Role: role, Text: text})
}

// Messages returns a copy of everything posted so far.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.messages...)
}

type discardSink struct{}

func (discardSink) Post(Role, string) {}
