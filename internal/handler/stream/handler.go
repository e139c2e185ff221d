package stream

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/lingochain/lingochain/internal/service/ai"
	"github.com/lingochain/lingochain/pkg/utils"
)

// Handler manages streaming AI responses via Server-Sent Events
type Handler struct {
	upstream ai.Upstream
}

// New creates a new stream handler
func New(upstream ai.Upstream) *Handler {
	return &Handler{upstream: upstream}
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/stream", h.handleStream)
}

// Delta is the payload of a "delta" event.
type Delta struct {
	Text string `json:"text"`
}

// handleStream emits "delta" events while the reply is generated, then one
// "message" event holding the full reply body. Failures after the stream has
// started are reported as an "error" event.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	streamer, ok := h.upstream.(ai.Streamer)
	if !ok {
		utils.RespondError(w, http.StatusNotImplemented, "streaming unsupported by upstream")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reqID := middleware.GetReqID(r.Context())
	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	body, err := streamer.Stream(r.Context(), payload.Message, func(text string) error {
		return utils.SendSSEEvent(w, flusher, "delta", Delta{Text: text})
	})
	if err != nil {
		log.Error().Err(err).Str("request_id", reqID).Msg("stream failed")
		_ = utils.SendSSEEvent(w, flusher, "error", map[string]string{"error": "Failed to get AI response"})
		return
	}

	if err := utils.SendSSEEvent(w, flusher, "message", body); err != nil {
		log.Warn().Err(err).Str("request_id", reqID).Msg("failed to write final event")
		return
	}
	log.Debug().Str("request_id", reqID).Msg("stream completed")
}
