package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingochain/lingochain/internal/config"
)

const upstreamBody = `{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":"Bonjour!"}],"model":"claude-sonnet-4-5-20250929","stop_reason":"end_turn"}`

func testUpstreamConfig(baseURL string) config.UpstreamConfig {
	return config.UpstreamConfig{
		Provider:  config.ProviderAnthropic,
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Version:   "2023-06-01",
		Model:     "claude-sonnet-4-5-20250929",
		MaxTokens: 1024,
	}
}

func TestAnthropicCompleteRelaysBodyVerbatim(t *testing.T) {
	var gotRequest anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("content-type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &gotRequest))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, upstreamBody)
	}))
	defer srv.Close()

	upstream := NewAnthropic(testUpstreamConfig(srv.URL))
	body, err := upstream.Complete(context.Background(), "How do I say hello in French?")
	require.NoError(t, err)

	assert.Equal(t, upstreamBody, string(body))
	assert.Equal(t, "claude-sonnet-4-5-20250929", gotRequest.Model)
	assert.Equal(t, 1024, gotRequest.MaxTokens)
	require.Len(t, gotRequest.Messages, 1)
	assert.Equal(t, "user", gotRequest.Messages[0].Role)
	assert.Equal(t, "How do I say hello in French?", gotRequest.Messages[0].Content)
}

func TestAnthropicCompleteRelaysErrorStatusBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error"}}`)
	}))
	defer srv.Close()

	body, err := NewAnthropic(testUpstreamConfig(srv.URL)).Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, `{"type":"error","error":{"type":"authentication_error"}}`, string(body))
}

func TestAnthropicCompleteErrorStatusWithoutJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream unavailable")
	}))
	defer srv.Close()

	_, err := NewAnthropic(testUpstreamConfig(srv.URL)).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.ErrorContains(t, err, "502")
}

func TestAnthropicCompleteInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	_, err := NewAnthropic(testUpstreamConfig(srv.URL)).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestAnthropicCompleteNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAnthropic(testUpstreamConfig(url)).Complete(context.Background(), "hi")
	assert.Error(t, err)
}

func TestAnthropicCompleteHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnthropic(testUpstreamConfig(srv.URL)).Complete(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewUpstreamSelectsProvider(t *testing.T) {
	cfg := &config.Config{Upstream: testUpstreamConfig("http://example.invalid")}
	upstream, err := NewUpstream(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, upstream)

	cfg.Upstream.Provider = config.ProviderArk
	_, err = NewUpstream(context.Background(), cfg)
	assert.Error(t, err, "ark without credentials must fail")

	cfg.Upstream.Provider = "carrier-pigeon"
	_, err = NewUpstream(context.Background(), cfg)
	assert.Error(t, err)
}
