package session

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/lingochain/lingochain/internal/model/chat"
)

var (
	// ErrBusy is returned when a send is already in flight. Nothing is stored.
	ErrBusy = errors.New("a message is already being sent")
	// ErrEmptyMessage is returned for blank input. Nothing is stored.
	ErrEmptyMessage = errors.New("message is empty")
)

// Send appends text as a user message, asks the Sender for a reply and
// appends it. When the Sender fails an error-flagged assistant message is
// stored instead, the failure banner is raised and the Sender's error is
// returned alongside that message.
func (s *Session) Send(ctx context.Context, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return chat.Message{}, ErrBusy
	}
	s.busy = true

	idx := s.ensureActiveLocked()
	convID := s.conversations[idx].ID
	s.appendLocked(idx, chat.NewUserMessage(text, s.opts.Now()))
	_ = s.saveLocked(ctx)
	s.mu.Unlock()

	reply, sendErr := s.sender.Send(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.busy = false }()

	now := s.opts.Now()
	idx = s.indexLocked(convID)

	var msg chat.Message
	if sendErr != nil {
		log.Error().Err(sendErr).Int64("conversation", convID).Msg("failed to get response")
		s.raiseBannerLocked(s.opts.FailureBanner, now)
		msg = chat.NewErrorMessage(now)
		sendErr = errors.Wrap(sendErr, "send message")
	} else {
		number := 0
		if idx >= 0 {
			number = len(s.conversations[idx].Messages)
		}
		msg = chat.NewAssistantMessage(reply, number, now)
	}

	if idx < 0 {
		log.Warn().Int64("conversation", convID).Msg("conversation removed while waiting for reply, dropping it")
		return msg, sendErr
	}

	s.conversations[idx].Messages = append(s.conversations[idx].Messages, msg)
	s.conversations[idx].Timestamp = msg.Timestamp
	// the caller's context may have expired during the round trip
	_ = s.saveLocked(context.WithoutCancel(ctx))
	return msg, sendErr
}
