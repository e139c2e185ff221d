package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/lingochain/lingochain/internal/model/chat"
)

// LoadStatus tells callers why a load produced the conversations it did.
type LoadStatus int

const (
	// StatusEmpty means nothing was stored under the key.
	StatusEmpty LoadStatus = iota
	StatusLoaded
	// StatusCorrupt means a value exists but cannot be decoded.
	StatusCorrupt
	// StatusFailed means the backend could not be read.
	StatusFailed
)

func (s LoadStatus) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoaded:
		return "loaded"
	case StatusCorrupt:
		return "corrupt"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadResult is the outcome of reading the conversation list.
// Conversations is nil unless Status is StatusLoaded; Err is set for
// StatusCorrupt and StatusFailed.
type LoadResult struct {
	Status        LoadStatus
	Conversations []chat.Conversation
	Raw           []byte
	Err           error
}

// Load reads and decodes the conversation list stored under key.
func Load(ctx context.Context, store Store, key string) LoadResult {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return LoadResult{Status: StatusEmpty}
	}
	if err != nil {
		return LoadResult{Status: StatusFailed, Err: errors.Wrapf(err, "read %s", key)}
	}
	if len(raw) == 0 {
		return LoadResult{Status: StatusEmpty}
	}

	var conversations []chat.Conversation
	if err := json.Unmarshal(raw, &conversations); err != nil {
		return LoadResult{Status: StatusCorrupt, Raw: raw, Err: errors.Wrapf(err, "decode %s", key)}
	}
	if conversations == nil {
		// a stored JSON null
		return LoadResult{Status: StatusEmpty}
	}
	for i := range conversations {
		if conversations[i].Messages == nil {
			conversations[i].Messages = []chat.Message{}
		}
	}
	return LoadResult{Status: StatusLoaded, Conversations: conversations}
}

// Save encodes conversations and writes them under key.
func Save(ctx context.Context, store Store, key string, conversations []chat.Conversation) error {
	if conversations == nil {
		conversations = []chat.Conversation{}
	}
	raw, err := json.Marshal(conversations)
	if err != nil {
		return errors.Wrap(err, "encode conversations")
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return errors.Wrapf(err, "write %s", key)
	}
	return nil
}
