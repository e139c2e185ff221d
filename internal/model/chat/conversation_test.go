package chat

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "short question", DeriveTitle("short question"))

	exact := strings.Repeat("a", 30)
	assert.Equal(t, exact, DeriveTitle(exact))

	long := strings.Repeat("b", 31)
	assert.Equal(t, strings.Repeat("b", 30)+"...", DeriveTitle(long))

	// counts characters, not bytes
	accented := strings.Repeat("é", 31)
	assert.Equal(t, strings.Repeat("é", 30)+"...", DeriveTitle(accented))
}

func TestNewConversation(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	conv := NewConversation(now)

	assert.Equal(t, int64(1700000000123), conv.ID)
	assert.Equal(t, DefaultTitle, conv.Title)
	assert.NotNil(t, conv.Messages)
	assert.Empty(t, conv.Messages)
}

func TestCloneDoesNotShareMessages(t *testing.T) {
	conv := NewConversation(time.Now())
	conv.Messages = append(conv.Messages, NewUserMessage("a", time.Now()))

	clone := conv.Clone()
	clone.Messages[0].Content = "changed"
	assert.Equal(t, "a", conv.Messages[0].Content)
}

func TestRoleUnmarshal(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant","content":"x"}`), &msg))
	assert.Equal(t, RoleAssistant, msg.Role)

	err := json.Unmarshal([]byte(`{"role":"system","content":"x"}`), &msg)
	assert.ErrorContains(t, err, "unknown message role")
}

func TestMessageJSONOmitsOptionalFields(t *testing.T) {
	raw, err := json.Marshal(NewUserMessage("hi", time.Unix(0, 0)))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "messageNumber")
	assert.NotContains(t, string(raw), "isError")

	raw, err = json.Marshal(NewErrorMessage(time.Unix(0, 0)))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"isError":true`)
}
