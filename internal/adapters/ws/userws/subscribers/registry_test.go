package subscribers

import (
	"sync"
	"testing"
	"time"

	"lorryadmin/internal/core/event"
	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHub struct {
	mu     sync.Mutex
	events []*domain.WsServerEvent
}

func (h *captureHub) Broadcast(ev *domain.WsServerEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func TestRegisterForwardsBusEvents(t *testing.T) {
	bus := event.New(logger.Nop())
	hub := &captureHub{}
	Register(bus, hub)

	bus.Publish(domain.TopicRouteChanged, domain.EventRouteChanged{Route: domain.RouteHome})
	bus.Publish(domain.TopicOutcomeRecorded, domain.EventOutcomeRecorded{Flow: domain.FlowSignIn, Outcome: domain.Succeeded("u-1")})
	bus.Publish(domain.TopicSnapshotReplaced, domain.EventSnapshotReplaced{Snapshot: domain.ListSnapshot{Collection: domain.CollectionProducts}})

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.events) == 3
	}, time.Second, time.Millisecond)

	byEvent := map[string]string{}
	hub.mu.Lock()
	for _, ev := range hub.events {
		byEvent[ev.Event] = ev.Channel
	}
	hub.mu.Unlock()

	assert.Equal(t, domain.WsChannelState, byEvent[domain.TopicRouteChanged])
	assert.Equal(t, domain.WsChannelState, byEvent[domain.TopicOutcomeRecorded])
	assert.Equal(t, domain.WsChannelFeed, byEvent[domain.TopicSnapshotReplaced])
}

func TestHandlersIgnoreWrongPayload(t *testing.T) {
	hub := &captureHub{}

	NewRouteChanged(hub).Handle("not an event")
	NewOutcomeRecorded(hub).Handle(42)
	NewSnapshotReplaced(hub).Handle(nil)

	assert.Empty(t, hub.events)
}
