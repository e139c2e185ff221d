package ai

import (
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// Reply mirrors the Anthropic Messages response so every provider hands the
// client the same shape.
type Reply struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason,omitempty"`
	Usage      *Usage         `json:"usage,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// encodeReply converts an eino message into the relayed JSON body.
func encodeReply(modelName string, msg *schema.Message) (json.RawMessage, error) {
	reply := Reply{
		ID:      "msg_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Type:    "message",
		Role:    "assistant",
		Model:   modelName,
		Content: []ContentBlock{{Type: "text", Text: msg.Content}},
	}
	if meta := msg.ResponseMeta; meta != nil {
		reply.StopReason = meta.FinishReason
		if meta.Usage != nil {
			reply.Usage = &Usage{
				InputTokens:  meta.Usage.PromptTokens,
				OutputTokens: meta.Usage.CompletionTokens,
			}
		}
	}
	return json.Marshal(reply)
}
