package subscribers

import (
	"lorryadmin/internal/core/event"
	"lorryadmin/internal/domain"
)

type EventBus interface {
	Subscribe(eventName string, handler event.Handler)
}

type Broadcaster interface {
	Broadcast(ev *domain.WsServerEvent)
}

func Register(bus EventBus, hub Broadcaster) {
	bus.Subscribe(domain.TopicRouteChanged, NewRouteChanged(hub).Handle)
	bus.Subscribe(domain.TopicOutcomeRecorded, NewOutcomeRecorded(hub).Handle)
	bus.Subscribe(domain.TopicSnapshotReplaced, NewSnapshotReplaced(hub).Handle)
}
