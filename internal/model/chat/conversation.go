package chat

import (
	"time"
	"unicode/utf8"
)

// DefaultTitle is used until the first user message names the conversation.
const DefaultTitle = "New Conversation"

const titleLimit = 30

// Conversation is a titled, ordered list of messages.
// ID is the creation time in Unix milliseconds.
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
}

// NewConversation returns an empty conversation stamped with now.
func NewConversation(now time.Time) Conversation {
	return Conversation{
		ID:        now.UnixMilli(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		Timestamp: now.UTC(),
	}
}

// Clone returns a copy that shares no message storage with c.
func (c Conversation) Clone() Conversation {
	out := c
	out.Messages = append([]Message{}, c.Messages...)
	return out
}

// LastMessage returns the most recent message, if any.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// DeriveTitle shortens text to the title limit, adding an ellipsis when cut.
func DeriveTitle(text string) string {
	if utf8.RuneCountInString(text) <= titleLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleLimit]) + "..."
}
