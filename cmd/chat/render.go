package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lingochain/lingochain/internal/model/chat"
	"github.com/lingochain/lingochain/internal/service/session"
)

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFDF5"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	bannerStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#B91C1C")).
			Padding(0, 1)
)

const welcomeText = "Welcome to LingoChain! Type a message in any language to start practicing."

func renderMessage(msg chat.Message) string {
	var who string
	switch {
	case msg.Role == chat.RoleUser:
		who = userStyle.Render("You")
	case msg.Number > 0:
		who = assistantStyle.Render(fmt.Sprintf("Tutor #%d", msg.Number))
	default:
		who = assistantStyle.Render("Tutor")
	}

	body := msg.Content
	if msg.IsError {
		body = errorStyle.Render(body)
	}
	return fmt.Sprintf("%s %s\n%s\n", who, mutedStyle.Render(session.ClockTime(msg.Timestamp.Local())), body)
}

func renderConversation(conv chat.Conversation) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(conv.Title))
	b.WriteString("\n\n")
	if len(conv.Messages) == 0 {
		b.WriteString(mutedStyle.Render(welcomeText))
		b.WriteString("\n")
		return b.String()
	}
	for _, msg := range conv.Messages {
		b.WriteString(renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func renderList(convs []chat.Conversation, activeID int64, now time.Time) string {
	if len(convs) == 0 {
		return mutedStyle.Render("No conversations yet.") + "\n"
	}

	var b strings.Builder
	for i, conv := range convs {
		marker := "  "
		if conv.ID == activeID {
			marker = activeStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%2d. %s  %s\n      %s\n",
			marker,
			i+1,
			titleStyle.Render(conv.Title),
			mutedStyle.Render(session.RelativeTime(conv.Timestamp, now)),
			mutedStyle.Render(session.Preview(conv)),
		)
	}
	return b.String()
}

const helpText = `Commands:
  /new          start a new conversation
  /list         list conversations
  /switch N     open conversation N from /list
  /delete N     delete conversation N from /list
  /show         print the active conversation
  /clear        clear the active conversation
  /clearall     delete every conversation
  /help         show this help
  /quit         exit
Anything else is sent to the tutor.`
