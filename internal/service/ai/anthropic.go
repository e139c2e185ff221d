package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/lingochain/lingochain/internal/config"
)

// maxErrorBody bounds how much of a failed upstream body ends up in logs.
const maxErrorBody = 2048

// Anthropic forwards messages to the Anthropic Messages API and relays the
// raw response body, whatever its status, as long as it is JSON.
type Anthropic struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	version    string
	model      string
	maxTokens  int
}

var _ Upstream = (*Anthropic)(nil)

// AnthropicOption customises an Anthropic upstream.
type AnthropicOption func(*Anthropic)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) AnthropicOption {
	return func(a *Anthropic) {
		a.httpClient = c
	}
}

// NewAnthropic creates the relay. A zero cfg.Timeout means no client timeout.
func NewAnthropic(cfg config.UpstreamConfig, opts ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		version:    cfg.Version,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

// Complete sends message as the only user turn.
func (a *Anthropic) Complete(ctx context.Context, message string) (json.RawMessage, error) {
	payload, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: message}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode upstream request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build upstream request")
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", a.version)
	req.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call upstream")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read upstream response")
	}

	// error statuses still carry a JSON body, which is relayed like a reply
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := body
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		log.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("upstream returned error status")
	}

	if !json.Valid(body) {
		return nil, errors.Wrapf(ErrInvalidJSON, "status %d", resp.StatusCode)
	}

	log.Debug().
		Str("model", a.model).
		Int("bytes", len(body)).
		Msg("upstream response relayed")
	return json.RawMessage(body), nil
}
