// Package userws pushes app state changes to rendering-layer clients.
package userws

import (
	"context"
	"encoding/json"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"
)

// DefaultChannels are joined on connect.
var DefaultChannels = []string{domain.WsChannelState, domain.WsChannelFeed}

type Hub struct {
	ctx    context.Context
	cancel context.CancelFunc

	clients  map[*Client]bool
	channels map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *Subscription
	unsubscribe chan *Subscription
	events      chan *domain.WsServerEvent

	stopped chan struct{}

	log logger.Logger
}

type Subscription struct {
	client  *Client
	channel string
}

func NewHub(parent context.Context, log logger.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)

	return &Hub{
		ctx:    ctx,
		cancel: cancel,

		clients:  make(map[*Client]bool),
		channels: make(map[string]map[*Client]bool),

		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan *Subscription),
		unsubscribe: make(chan *Subscription),
		events:      make(chan *domain.WsServerEvent, 100),

		stopped: make(chan struct{}),
		log:     log,
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)

	for {
		select {
		case <-h.ctx.Done():
			h.log.Info("ws: hub shutting down")
			for client := range h.clients {
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			for _, ch := range DefaultChannels {
				h.join(client, ch)
			}
			h.log.Info("ws: client registered", "id", client.ID, "total_clients", len(h.clients))

		case client := <-h.unregister:
			h.drop(client)

		case sub := <-h.subscribe:
			if h.clients[sub.client] {
				h.join(sub.client, sub.channel)
				h.log.Debug("ws: client subscribed", "client_id", sub.client.ID, "channel", sub.channel)
			}

		case sub := <-h.unsubscribe:
			h.leave(sub.client, sub.channel)
			h.log.Debug("ws: client unsubscribed", "client_id", sub.client.ID, "channel", sub.channel)

		case event := <-h.events:
			h.handleEvent(event)
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

func (h *Hub) join(c *Client, channel string) {
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][c] = true
}

func (h *Hub) leave(c *Client, channel string) {
	subs, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.channels, channel)
	}
}

func (h *Hub) drop(c *Client) {
	if !h.clients[c] {
		return
	}

	delete(h.clients, c)
	close(c.send)

	for channel := range h.channels {
		h.leave(c, channel)
	}
	h.log.Info("ws: client unregistered", "id", c.ID, "total_clients", len(h.clients))
}

func (h *Hub) handleEvent(event *domain.WsServerEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws: failed to marshal server event", "error", err)
		return
	}

	targets := h.clients
	if event.Channel != "" {
		subs, ok := h.channels[event.Channel]
		if !ok {
			h.log.Debug("ws: event channel has no subscribers", "channel", event.Channel)
			return
		}
		targets = subs
	}

	var slow []*Client
	for client := range targets {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}

	for _, client := range slow {
		h.log.Warn("ws: client channel full, force unregister", "id", client.ID)
		h.drop(client)
	}
}

// Broadcast queues an event. It never blocks the caller: if the hub is gone
// or its queue is full the event is dropped.
func (h *Hub) Broadcast(ev *domain.WsServerEvent) {
	select {
	case h.events <- ev:
	case <-h.ctx.Done():
	default:
		h.log.Warn("ws: event queue full, dropping event", "event", ev.Event)
	}
}

func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) send(ch chan *Subscription, sub *Subscription) {
	select {
	case ch <- sub:
	case <-h.ctx.Done():
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}
