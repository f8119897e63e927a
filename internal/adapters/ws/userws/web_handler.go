package userws

import (
	"net/http"
	"slices"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const EventStateSnapshot = "state_snapshot"

type StateSource interface {
	State() domain.AppState
}

type WebHandler struct {
	hub      *Hub
	state    StateSource
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewWebHandler(hub *Hub, state StateSource, log logger.Logger, allowedOrigins []string) *WebHandler {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			if !slices.Contains(allowedOrigins, origin) {
				log.Warn("ws: origin rejected", "origin", origin)
				return false
			}
			return true
		},
	}

	return &WebHandler{
		hub:      hub,
		state:    state,
		upgrader: upgrader,
		log:      log,
	}
}

// Serve upgrades the connection, sends the current state, then streams
// route, outcome and snapshot events.
func (h *WebHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws: upgrade failed", "error", err)
		return
	}

	c := NewClient(h.hub, conn, h.log, uuid.NewString())

	if h.state != nil {
		if err := c.Prime(&domain.WsServerEvent{
			Channel: domain.WsChannelState,
			Event:   EventStateSnapshot,
			Payload: h.state.State(),
		}); err != nil {
			h.log.Error("ws: failed to encode initial state", "error", err)
		}
	}

	if !h.hub.Register(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
