package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoUpstream struct{}

func (echoUpstream) Complete(ctx context.Context, message string) (json.RawMessage, error) {
	return json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": "echo: " + message}},
	})
}

func TestRouterHealthz(t *testing.T) {
	resp := httptest.NewRecorder()
	NewRouter(echoUpstream{}, "").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestRouterChat(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hola"}`))
	resp := httptest.NewRecorder()
	NewRouter(echoUpstream{}, "").ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"echo: hola"}]}`, resp.Body.String())
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterStreamNotImplemented(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat/stream", strings.NewReader(`{"message":"hola"}`))
	resp := httptest.NewRecorder()
	NewRouter(echoUpstream{}, "").ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotImplemented, resp.Code)
}

func TestRouterStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.html"), []byte("<h1>LingoChain</h1>"), 0o644))
	router := NewRouter(echoUpstream{}, dir)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/app.html", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "LingoChain")

	resp = httptest.NewRecorder()
	NewRouter(echoUpstream{}, "").ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/app.html", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
