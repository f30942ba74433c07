package handler

import (
	"net/http"

	"devconnector-server/internal/middleware"
	"devconnector-server/internal/websocket"
	"devconnector-server/pkg/response"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WebSocketHandler struct {
	manager  *websocket.Manager
	verifier middleware.TokenVerifier
	upgrader ws.Upgrader
	logger   zerolog.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, verifier middleware.TokenVerifier, readBuf, writeBuf int, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager:  manager,
		verifier: verifier,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleConnection upgrades an authenticated request to a live feed
// connection. Browsers cannot set custom headers on the handshake, so the
// token may also arrive as the token query parameter.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.TokenHeader)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		response.Unauthorized(w, "No token, authorization denied")
		return
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		response.Unauthorized(w, "Token is not valid")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("user", identity.ID).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(uuid.New().String(), identity.ID, conn, h.manager)

	select {
	case h.manager.Register <- client:
	case <-h.manager.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
