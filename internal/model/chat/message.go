package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrorReply is the assistant text recorded when the proxy call fails.
const ErrorReply = "Sorry, I encountered an error. Please make sure the server is running."

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// UnmarshalJSON rejects roles outside the closed set.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	role := Role(raw)
	if !role.Valid() {
		return fmt.Errorf("unknown message role %q", raw)
	}
	*r = role
	return nil
}

// Message is one turn in a conversation. It is never edited after creation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Number    int       `json:"messageNumber,omitempty"`
	IsError   bool      `json:"isError,omitempty"`
}

// NewUserMessage builds a message typed by the end user.
func NewUserMessage(content string, now time.Time) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: now.UTC(),
	}
}

// NewAssistantMessage builds a reply; number is the message count before the reply.
func NewAssistantMessage(content string, number int, now time.Time) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: now.UTC(),
		Number:    number,
	}
}

// NewErrorMessage builds the assistant message recorded when a send fails.
func NewErrorMessage(now time.Time) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   ErrorReply,
		Timestamp: now.UTC(),
		IsError:   true,
	}
}
