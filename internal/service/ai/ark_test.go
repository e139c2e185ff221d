package ai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply  string
	chunks []string
	input  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	return &schema.Message{
		Role:    schema.Assistant,
		Content: f.reply,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "stop",
			Usage:        &schema.TokenUsage{PromptTokens: 3, CompletionTokens: 5, TotalTokens: 8},
		},
	}, nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.input = input
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, &schema.Message{Role: schema.Assistant, Content: c})
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func decodeReply(t *testing.T, raw json.RawMessage) Reply {
	t.Helper()
	var reply Reply
	require.NoError(t, json.Unmarshal(raw, &reply))
	return reply
}

func TestArkCompleteEncodesReply(t *testing.T) {
	fake := &fakeChatModel{reply: "Hallo!"}
	ark, err := newArkWithModel(context.Background(), fake, "doubao-pro", "You are a language tutor.")
	require.NoError(t, err)

	raw, err := ark.Complete(context.Background(), "Say hello in German")
	require.NoError(t, err)

	reply := decodeReply(t, raw)
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "doubao-pro", reply.Model)
	assert.Contains(t, reply.ID, "msg_")
	require.Len(t, reply.Content, 1)
	assert.Equal(t, "text", reply.Content[0].Type)
	assert.Equal(t, "Hallo!", reply.Content[0].Text)
	assert.Equal(t, "stop", reply.StopReason)
	require.NotNil(t, reply.Usage)
	assert.Equal(t, 3, reply.Usage.InputTokens)
	assert.Equal(t, 5, reply.Usage.OutputTokens)

	require.Len(t, fake.input, 2)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, "You are a language tutor.", fake.input[0].Content)
	assert.Equal(t, schema.User, fake.input[1].Role)
	assert.Equal(t, "Say hello in German", fake.input[1].Content)
}

func TestArkWithoutSystemPromptSendsOnlyUserTurn(t *testing.T) {
	fake := &fakeChatModel{reply: "ok"}
	ark, err := newArkWithModel(context.Background(), fake, "m", "")
	require.NoError(t, err)

	_, err = ark.Complete(context.Background(), "literal {braces} survive")
	require.NoError(t, err)

	require.Len(t, fake.input, 1)
	assert.Equal(t, "literal {braces} survive", fake.input[0].Content)
}

func TestArkStreamForwardsDeltas(t *testing.T) {
	fake := &fakeChatModel{chunks: []string{"Buon", "", "giorno"}}
	ark, err := newArkWithModel(context.Background(), fake, "m", "")
	require.NoError(t, err)

	var deltas []string
	raw, err := ark.Stream(context.Background(), "hello in Italian", func(text string) error {
		deltas = append(deltas, text)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Buon", "giorno"}, deltas)
	reply := decodeReply(t, raw)
	require.Len(t, reply.Content, 1)
	assert.Equal(t, "Buongiorno", reply.Content[0].Text)
}
