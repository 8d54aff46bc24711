package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleError     = "error"
)

// Message is one transcript entry
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  Metadata  `json:"metadata"`
}

// Metadata records what an assistant turn did to the canvas
type Metadata struct {
	Applied  int    `json:"applied,omitempty"`  // canvas mutations reported
	State    string `json:"state,omitempty"`    // terminal stream state
	Thinking string `json:"thinking,omitempty"` // narration not shown in the transcript
}

// NewMessage creates a message with a fresh id
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message with trimmed content
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, strings.TrimSpace(content))
}

// NewAssistantMessage creates an assistant message
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// NewErrorMessage creates an error message
func NewErrorMessage(content string) Message {
	return NewMessage(RoleError, content)
}

// IsEmpty reports whether the message has no content
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}
