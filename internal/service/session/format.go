package session

import (
	"fmt"
	"time"

	"github.com/lingochain/lingochain/internal/model/chat"
)

const previewLimit = 60

// Preview is the one-line summary shown in the conversation list.
func Preview(conv chat.Conversation) string {
	last, ok := conv.LastMessage()
	if !ok {
		return "Start chatting..."
	}
	runes := []rune(last.Content)
	if len(runes) > previewLimit {
		runes = runes[:previewLimit]
	}
	return string(runes) + "..."
}

// RelativeTime renders t as Now, 5m, 3h, 2d, or a short date past a week.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Now"
	case mins < 60:
		return fmt.Sprintf("%dm", mins)
	case hours < 24:
		return fmt.Sprintf("%dh", hours)
	case days < 7:
		return fmt.Sprintf("%dd", days)
	default:
		return t.In(now.Location()).Format("Jan 2")
	}
}

// ClockTime renders t as "3:04 PM" in t's own location.
func ClockTime(t time.Time) string {
	return t.Format("3:04 PM")
}
