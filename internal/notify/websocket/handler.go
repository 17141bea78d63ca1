package websocket

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/movstream/backend/internal/common/config"
	"github.com/movstream/backend/internal/common/constants"
	"github.com/movstream/backend/internal/common/logger"
)

// Handler upgrades /ws requests and hands the raw connection to the hub.
// Connections start unauthenticated; identification happens in-band via the
// authenticate frame, so no Authorization header is required here.
type Handler struct {
	hub      *Hub
	upgrader gorillaWS.Upgrader
	log      *logger.Logger
	opts     clientOptions
}

func NewHandler(hub *Hub, cfg config.Config, log *logger.Logger) *Handler {
	return &Handler{
		hub: hub,
		log: log,
		opts: clientOptions{
			writeWait:   cfg.WebSocketWriteWait,
			pongWait:    cfg.WebSocketPongWait,
			pingPeriod:  cfg.WebSocketPingPeriod,
			maxMsgSize:  cfg.WebSocketMaxMsgSize,
			sendBufSize: cfg.WebSocketSendBufSize,
		},
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufferSize,
			WriteBufferSize: constants.WebSocketWriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				host := r.Host
				if host == "" {
					host = r.URL.Host
				}
				return origin == "http://"+host || origin == "https://"+host
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade failed: %v", err)
		return
	}

	client := newClient(h.hub, conn, h.log, h.opts)
	h.hub.register(client)
	client.Start()
}
