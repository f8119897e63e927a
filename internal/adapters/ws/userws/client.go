package userws

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  logger.Logger

	ID string
}

func NewClient(hub *Hub, conn *websocket.Conn, log logger.Logger, id string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		log:  log,
		ID:   id,
	}
}

// Prime queues a frame before the pumps start, so a new client sees the
// current state before any broadcast.
func (c *Client) Prime(ev *domain.WsServerEvent) error {
	message, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.send <- message
	return nil
}

const (
	msgSubscribe   = "subscribe"
	msgUnsubscribe = "unsubscribe"
)

var (
	errInvalidMessage = errors.New("invalid client message")
	errUnknownType    = errors.New("unknown client message type")
	errUnknownChannel = errors.New("unknown channel")
)

// parseClientMessage reads one frame of the subscribe protocol. Clients start
// on DefaultChannels and may leave or rejoin any of them; nothing else is
// accepted.
func parseClientMessage(raw []byte) (string, string, error) {
	var msg domain.WsClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", "", fmt.Errorf("%w: %v", errInvalidMessage, err)
	}

	if msg.Type != msgSubscribe && msg.Type != msgUnsubscribe {
		return "", "", fmt.Errorf("%w: %q", errUnknownType, msg.Type)
	}
	if !slices.Contains(DefaultChannels, msg.Channel) {
		return "", "", fmt.Errorf("%w: %q", errUnknownChannel, msg.Channel)
	}
	return msg.Type, msg.Channel, nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("ws: client disconnected unexpected", "client_id", c.ID, "error", err)
			}
			return
		}

		op, channel, err := parseClientMessage(raw)
		if err != nil {
			c.log.Warn("ws: rejected client message", "client_id", c.ID, "error", err)
			continue
		}

		sub := &Subscription{client: c, channel: channel}
		if op == msgSubscribe {
			c.hub.send(c.hub.subscribe, sub)
		} else {
			c.hub.send(c.hub.unsubscribe, sub)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Debug("ws: write failed", "client_id", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
