package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingochain/lingochain/internal/model/chat"
)

type brokenStore struct {
	*MemoryStore
}

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestLoadEmpty(t *testing.T) {
	res := Load(context.Background(), NewMemoryStore(), "lingochainChats")
	assert.Equal(t, StatusEmpty, res.Status)
	assert.Nil(t, res.Conversations)
	assert.NoError(t, res.Err)
}

func TestLoadNullIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "k", []byte("null")))

	res := Load(ctx, store, "k")
	assert.Equal(t, StatusEmpty, res.Status)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

	conv := chat.NewConversation(now)
	conv.Messages = append(conv.Messages,
		chat.NewUserMessage("hola", now),
		chat.NewAssistantMessage("¡Hola!", 1, now),
		chat.NewErrorMessage(now),
	)
	require.NoError(t, Save(ctx, store, "k", []chat.Conversation{conv}))

	res := Load(ctx, store, "k")
	require.Equal(t, StatusLoaded, res.Status)
	require.Len(t, res.Conversations, 1)
	assert.Equal(t, conv, res.Conversations[0])
}

func TestLoadOriginalFormat(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	raw := `[{"id":1700000000000,"title":"New Conversation","messages":[],"timestamp":"2025-01-02T03:04:05.000Z"},
	         {"id":1,"title":"hi","messages":[{"role":"user","content":"hi","timestamp":"2025-01-02T03:04:05.000Z"},
	         {"role":"assistant","content":"hello","timestamp":"2025-01-02T03:04:06.000Z","messageNumber":1}],"timestamp":"2025-01-02T03:04:05.000Z"}]`
	require.NoError(t, store.Set(ctx, "k", []byte(raw)))

	res := Load(ctx, store, "k")
	require.Equal(t, StatusLoaded, res.Status)
	require.Len(t, res.Conversations, 2)
	assert.Equal(t, int64(1700000000000), res.Conversations[0].ID)
	assert.NotNil(t, res.Conversations[0].Messages)
	assert.Equal(t, chat.RoleAssistant, res.Conversations[1].Messages[1].Role)
	assert.Equal(t, 1, res.Conversations[1].Messages[1].Number)
}

func TestLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"not json":     `{{{`,
		"wrong shape":  `{"id":1}`,
		"unknown role": `[{"id":1,"title":"t","messages":[{"role":"system","content":"x","timestamp":"2025-01-02T03:04:05Z"}],"timestamp":"2025-01-02T03:04:05Z"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewMemoryStore()
			require.NoError(t, store.Set(ctx, "k", []byte(raw)))

			res := Load(ctx, store, "k")
			assert.Equal(t, StatusCorrupt, res.Status)
			assert.Error(t, res.Err)
			assert.Equal(t, raw, string(res.Raw))
		})
	}
}

func TestLoadFailed(t *testing.T) {
	res := Load(context.Background(), brokenStore{NewMemoryStore()}, "k")
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorContains(t, res.Err, "disk on fire")
}

func TestLoadStatusString(t *testing.T) {
	assert.Equal(t, "corrupt", StatusCorrupt.String())
	assert.Equal(t, "unknown", LoadStatus(42).String())
}
