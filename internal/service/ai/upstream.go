package ai

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/lingochain/lingochain/internal/config"
)

// ErrInvalidJSON means the upstream body could not be relayed as JSON.
var ErrInvalidJSON = errors.New("upstream returned invalid JSON")

// Upstream relays a single user message to a chat-completion API and returns
// the response body to be sent back to the caller unchanged.
type Upstream interface {
	Complete(ctx context.Context, message string) (json.RawMessage, error)
}

// Streamer is implemented by upstreams that can emit partial text.
// onDelta is called for every non-empty chunk; the final body is returned
// once the stream ends.
type Streamer interface {
	Stream(ctx context.Context, message string, onDelta func(text string) error) (json.RawMessage, error)
}

// NewUpstream builds the provider selected by cfg.Upstream.Provider.
func NewUpstream(ctx context.Context, cfg *config.Config) (Upstream, error) {
	switch cfg.Upstream.Provider {
	case config.ProviderArk:
		return NewArk(ctx, cfg.AI)
	case config.ProviderAnthropic, "":
		return NewAnthropic(cfg.Upstream), nil
	default:
		return nil, errors.Errorf("unknown upstream provider %q", cfg.Upstream.Provider)
	}
}
