package chat

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lingochain/lingochain/internal/service/ai"
	"github.com/lingochain/lingochain/pkg/utils"
)

const replyFailed = "Failed to get AI response"

// Handler 聊天代理的HTTP处理器
type Handler struct {
	upstream ai.Upstream
	upgrader websocket.Upgrader
	// readTimeout bounds how long a websocket may stay silent between frames
	readTimeout time.Duration
}

// New 创建聊天处理器
func New(upstream ai.Upstream) *Handler {
	return &Handler{
		upstream:    upstream,
		readTimeout: pongWait,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/ws", h.handleWebSocket)
}

type chatRequest struct {
	Message string `json:"message"`
}

// handleChat relays one message and returns the upstream body untouched.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	body, err := h.upstream.Complete(r.Context(), payload.Message)
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("upstream call failed")
		utils.RespondError(w, http.StatusInternalServerError, replyFailed)
		return
	}

	utils.RespondRaw(w, http.StatusOK, body)
}
