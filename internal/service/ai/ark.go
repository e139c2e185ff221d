package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/lingochain/lingochain/internal/config"
)

// Ark runs messages through an eino chain backed by the Ark chat model and
// encodes replies in the Reply shape.
type Ark struct {
	modelName string
	system    string
	chain     compose.Runnable[map[string]any, *schema.Message]
}

var (
	_ Upstream = (*Ark)(nil)
	_ Streamer = (*Ark)(nil)
)

// NewArk creates the Ark chat model from cfg and compiles the chain.
func NewArk(ctx context.Context, cfg config.AIConfig) (*Ark, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newArkWithModel(ctx, chatModel, cfg.Model, cfg.SystemPrompt)
}

func newArkWithModel(ctx context.Context, chatModel model.BaseChatModel, modelName, system string) (*Ark, error) {
	templates := make([]schema.MessagesTemplate, 0, 2)
	if system != "" {
		templates = append(templates, schema.SystemMessage("{system}"))
	}
	templates = append(templates, schema.UserMessage("{query}"))

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(prompt.FromMessages(schema.FString, templates...))
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Ark{
		modelName: modelName,
		system:    system,
		chain:     runnable,
	}, nil
}

func (a *Ark) input(message string) map[string]any {
	input := map[string]any{"query": message}
	if a.system != "" {
		input["system"] = a.system
	}
	return input
}

// Complete runs the chain once and returns the encoded reply.
func (a *Ark) Complete(ctx context.Context, message string) (json.RawMessage, error) {
	response, err := a.chain.Invoke(ctx, a.input(message))
	if err != nil {
		return nil, fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Debug().Str("model", a.modelName).Int("length", len(response.Content)).Msg("ark response generated")
	return encodeReply(a.modelName, response)
}

// Stream forwards chunks to onDelta and returns the concatenated reply.
func (a *Ark) Stream(ctx context.Context, message string, onDelta func(text string) error) (json.RawMessage, error) {
	stream, err := a.chain.Stream(ctx, a.input(message))
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return nil, recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			if err := onDelta(chunk.Content); err != nil {
				return nil, err
			}
		}
	}

	if len(chunks) == 0 {
		return encodeReply(a.modelName, &schema.Message{Role: schema.Assistant})
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, err
	}
	return encodeReply(a.modelName, response)
}
