package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

type errorFrame struct {
	Error string `json:"error"`
}

// handleWebSocket 处理WebSocket连接，每个入站消息按顺序对应一个出站消息
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := log.With().Str("conn", uuid.NewString()).Logger()
	logger.Info().Msg("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	go pingLoop(ctx, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("websocket read error")
			}
			logger.Info().Msg("websocket closed")
			return
		}
		// pongs are not read while the upstream call runs, which has no time limit
		conn.SetReadDeadline(time.Time{})

		var frame any = errorFrame{Error: "invalid request body"}
		var payload chatRequest
		if err := json.Unmarshal(data, &payload); err == nil {
			body, err := h.upstream.Complete(ctx, payload.Message)
			if err != nil {
				logger.Error().Err(err).Msg("upstream call failed")
				frame = errorFrame{Error: replyFailed}
			} else {
				frame = body
			}
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			logger.Warn().Err(err).Msg("websocket write failed")
			return
		}
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// WriteControl may run alongside WriteJSON
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
