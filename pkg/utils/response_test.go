package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusBadRequest, "invalid request body")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestRespondRawKeepsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	body := []byte(`{"content":[{"type":"text","text":"hi"}],  "extra":1}`)
	RespondRaw(rec, http.StatusOK, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(body), rec.Body.String())
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)
	require.NoError(t, SendSSEEvent(rec, rec, "delta", map[string]string{"text": "Hola"}))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "event: delta\ndata: {\"text\":\"Hola\"}\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}
