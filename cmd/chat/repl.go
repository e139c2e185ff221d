package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/lingochain/lingochain/internal/service/session"
)

type lineReader interface {
	ReadLine(prompt string) (string, error)
}

type repl struct {
	sess    *session.Session
	out     io.Writer
	confirm func(question string) bool
	now     func() time.Time
}

func newREPL(sess *session.Session, out io.Writer, confirm func(string) bool) *repl {
	return &repl{sess: sess, out: out, confirm: confirm, now: time.Now}
}

// Loop reads input until /quit, EOF, Ctrl+C or ctx is done.
func (r *repl) Loop(ctx context.Context, in lineReader) error {
	if conv, ok := r.sess.Active(); ok {
		fmt.Fprint(r.out, renderConversation(conv))
	}
	fmt.Fprintln(r.out, mutedStyle.Render("Type /help for commands."))

	for ctx.Err() == nil {
		input, err := in.ReadLine(promptStyle.Render("lingochain> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		if r.Handle(ctx, input) {
			return nil
		}
	}
	return nil
}

// Handle runs one line of input and reports whether the user asked to quit.
func (r *repl) Handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if !strings.HasPrefix(input, "/") {
		r.send(ctx, input)
		return false
	}

	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, helpText)
	case "/new":
		if _, err := r.sess.Create(ctx); err != nil {
			r.warn("could not save the new conversation", err)
		}
		r.show()
	case "/list":
		fmt.Fprint(r.out, renderList(r.sess.Conversations(), r.sess.ActiveID(), r.now()))
	case "/show":
		r.show()
	case "/switch":
		id, ok := r.pick(fields)
		if !ok {
			return false
		}
		r.sess.Switch(id)
		r.show()
	case "/delete":
		id, ok := r.pick(fields)
		if !ok {
			return false
		}
		if !r.confirm("Delete this conversation?") {
			return false
		}
		if err := r.sess.Delete(ctx, id); err != nil {
			r.warn("could not save after delete", err)
		}
		fmt.Fprintln(r.out, mutedStyle.Render("Conversation deleted."))
	case "/clear":
		if !r.confirm("Clear this conversation?") {
			return false
		}
		if err := r.sess.ClearActive(ctx); err != nil {
			r.warn("could not save after clear", err)
		}
		r.show()
	case "/clearall":
		if !r.confirm("Are you sure you want to delete all conversations? This cannot be undone.") {
			return false
		}
		if err := r.sess.ClearAll(ctx); err != nil {
			r.warn("could not save after clearing", err)
		}
		fmt.Fprintln(r.out, mutedStyle.Render("All conversations deleted."))
	default:
		fmt.Fprintf(r.out, "Unknown command %s. Type /help for commands.\n", fields[0])
	}
	return false
}

func (r *repl) send(ctx context.Context, text string) {
	if conv, ok := r.sess.Active(); ok && len(conv.Messages) == 0 {
		fmt.Fprintln(r.out, mutedStyle.Render("Starting: "+text))
	}
	fmt.Fprintln(r.out, mutedStyle.Render("Tutor is typing..."))

	msg, err := r.sess.Send(ctx, text)
	switch {
	case errors.Is(err, session.ErrBusy):
		fmt.Fprintln(r.out, mutedStyle.Render("Still waiting for the previous reply."))
		return
	case errors.Is(err, session.ErrEmptyMessage):
		return
	}

	fmt.Fprint(r.out, renderMessage(msg))
	if banner, ok := r.sess.Banner(); ok {
		fmt.Fprintln(r.out, bannerStyle.Render(banner))
	}
}

// pick resolves the 1-based list position in fields[1] to a conversation id.
func (r *repl) pick(fields []string) (int64, bool) {
	if len(fields) < 2 {
		fmt.Fprintf(r.out, "Usage: %s N (see /list)\n", fields[0])
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	convs := r.sess.Conversations()
	if err != nil || n < 1 || n > len(convs) {
		fmt.Fprintf(r.out, "No conversation %s. Use /list to see them.\n", fields[1])
		return 0, false
	}
	return convs[n-1].ID, true
}

func (r *repl) show() {
	conv, ok := r.sess.Active()
	if !ok {
		fmt.Fprintln(r.out, mutedStyle.Render("No active conversation."))
		return
	}
	fmt.Fprint(r.out, renderConversation(conv))
}

func (r *repl) warn(msg string, err error) {
	log.Warn().Err(err).Msg(msg)
	fmt.Fprintln(r.out, errorStyle.Render(msg))
}
