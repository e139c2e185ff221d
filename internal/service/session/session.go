// Package session owns the client-side conversation list: which
// conversations exist, which one is active, and whether a send is in flight.
// Every mutation is written through to the backing store before returning.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/lingochain/lingochain/internal/model/chat"
	"github.com/lingochain/lingochain/internal/storage"
)

// DefaultKey is the store key holding the serialized conversation list.
const DefaultKey = "lingochainChats"

// BackupKey is where RecoverReset keeps an unreadable value before the
// fresh list overwrites key.
func BackupKey(key string) string {
	return key + ".corrupt"
}

// RecoveryPolicy decides what Open does when stored data cannot be used.
type RecoveryPolicy int

const (
	// RecoverReset logs the problem, copies unreadable data to BackupKey and
	// starts from an empty list.
	RecoverReset RecoveryPolicy = iota
	// RecoverFail makes Open return the load error.
	RecoverFail
)

// Sender delivers a user message and returns the assistant's text.
type Sender interface {
	Send(ctx context.Context, message string) (string, error)
}

// Options tune a Session. Zero values fall back to DefaultOptions except
// ClearAllDelay, where zero means "recreate immediately".
type Options struct {
	Key           string
	ClearAllDelay time.Duration
	BannerTTL     time.Duration
	FailureBanner string
	OnLoadFailure RecoveryPolicy
	Now           func() time.Time
}

// DefaultOptions mirrors the timings of the web client.
func DefaultOptions() Options {
	return Options{
		Key:           DefaultKey,
		ClearAllDelay: 300 * time.Millisecond,
		BannerTTL:     5 * time.Second,
		FailureBanner: "Failed to get response. Make sure the server is running.",
		OnLoadFailure: RecoverReset,
		Now:           time.Now,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Key == "" {
		o.Key = def.Key
	}
	if o.BannerTTL <= 0 {
		o.BannerTTL = def.BannerTTL
	}
	if o.FailureBanner == "" {
		o.FailureBanner = def.FailureBanner
	}
	if o.Now == nil {
		o.Now = def.Now
	}
	return o
}

// Session is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	store  storage.Store
	sender Sender
	opts   Options

	// index 0 is the most recently created conversation
	conversations []chat.Conversation
	activeID      int64
	busy          bool
	banner        banner
	pending       *time.Timer
	closed        bool
}

// Open loads the stored conversations and activates the most recent one,
// creating a fresh conversation when none exist.
func Open(ctx context.Context, store storage.Store, sender Sender, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	s := &Session{
		store:         store,
		sender:        sender,
		opts:          opts,
		conversations: []chat.Conversation{},
	}

	res := storage.Load(ctx, store, opts.Key)
	switch res.Status {
	case storage.StatusLoaded:
		s.conversations = res.Conversations
	case storage.StatusCorrupt, storage.StatusFailed:
		if opts.OnLoadFailure == RecoverFail {
			return nil, res.Err
		}
		log.Error().Err(res.Err).Str("status", res.Status.String()).Msg("error loading chats, starting empty")
		if res.Status == storage.StatusCorrupt && len(res.Raw) > 0 {
			backupKey := BackupKey(opts.Key)
			if err := store.Set(ctx, backupKey, res.Raw); err != nil {
				log.Error().Err(err).Str("key", backupKey).Msg("error backing up unreadable chats")
			} else {
				log.Warn().Str("key", backupKey).Msg("unreadable chats kept as backup")
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.conversations) == 0 {
		s.createLocked()
		if err := s.saveLocked(ctx); err != nil {
			log.Error().Err(err).Msg("error saving chats")
		}
	} else {
		s.activeID = s.conversations[0].ID
	}
	return s, nil
}

// Close cancels a pending recreation scheduled by ClearAll. It does not
// close the store.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// Conversations returns a copy of the list, most recent first.
func (s *Session) Conversations() []chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]chat.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// ActiveID returns the active conversation id, or 0 when there is none.
func (s *Session) ActiveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a copy of the active conversation.
func (s *Session) Active() (chat.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(s.activeID)
	if idx < 0 {
		return chat.Conversation{}, false
	}
	return s.conversations[idx].Clone(), true
}

// Busy reports whether a send is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Create prepends an empty conversation and makes it active.
func (s *Session) Create(ctx context.Context) (chat.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.createLocked()
	return conv.Clone(), s.saveLocked(ctx)
}

// Switch activates id. Unknown ids are ignored and report false.
func (s *Session) Switch(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return false
	}
	s.activeID = id
	return true
}

// Delete removes id. When it was active, the most recent remaining
// conversation becomes active, or a fresh one is created.
func (s *Session) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	s.conversations = append(s.conversations[:idx], s.conversations[idx+1:]...)

	if s.activeID == id {
		if len(s.conversations) > 0 {
			s.activeID = s.conversations[0].ID
		} else {
			s.activeID = 0
			s.createLocked()
		}
	}
	return s.saveLocked(ctx)
}

// ClearActive drops the active conversation's messages and resets its title.
func (s *Session) ClearActive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(s.activeID)
	if idx < 0 {
		return nil
	}
	conv := &s.conversations[idx]
	conv.Messages = []chat.Message{}
	conv.Title = chat.DefaultTitle
	conv.Timestamp = s.opts.Now().UTC()
	return s.saveLocked(ctx)
}

// ClearAll removes every conversation and schedules creation of a fresh one
// after Options.ClearAllDelay.
func (s *Session) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = []chat.Conversation{}
	s.activeID = 0
	err := s.saveLocked(ctx)

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}

	if s.opts.ClearAllDelay <= 0 {
		s.createLocked()
		if saveErr := s.saveLocked(ctx); err == nil {
			err = saveErr
		}
		return err
	}

	s.pending = time.AfterFunc(s.opts.ClearAllDelay, s.recreate)
	return err
}

func (s *Session) recreate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	if s.closed || len(s.conversations) > 0 {
		return
	}
	s.createLocked()
	if err := s.saveLocked(context.Background()); err != nil {
		log.Error().Err(err).Msg("error saving chats")
	}
}

// Append pushes msg onto the active conversation, creating one if needed.
func (s *Session) Append(ctx context.Context, msg chat.Message) error {
	if !msg.Role.Valid() {
		return errors.Errorf("invalid message role %q", msg.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendLocked(s.ensureActiveLocked(), msg)
	return s.saveLocked(ctx)
}

func (s *Session) createLocked() chat.Conversation {
	conv := chat.NewConversation(s.opts.Now())
	for _, c := range s.conversations {
		if c.ID >= conv.ID {
			conv.ID = c.ID + 1
		}
	}

	s.conversations = append([]chat.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	return conv
}

// ensureActiveLocked returns the index of the active conversation.
func (s *Session) ensureActiveLocked() int {
	if idx := s.indexLocked(s.activeID); idx >= 0 {
		return idx
	}
	s.createLocked()
	return 0
}

func (s *Session) appendLocked(idx int, msg chat.Message) {
	conv := &s.conversations[idx]
	if len(conv.Messages) == 0 && msg.Role == chat.RoleUser {
		conv.Title = chat.DeriveTitle(msg.Content)
	}
	conv.Messages = append(conv.Messages, msg)
	conv.Timestamp = msg.Timestamp
}

func (s *Session) indexLocked(id int64) int {
	if id == 0 {
		return -1
	}
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) saveLocked(ctx context.Context) error {
	if err := storage.Save(ctx, s.store, s.opts.Key, s.conversations); err != nil {
		log.Error().Err(err).Msg("error saving chats")
		return err
	}
	return nil
}
