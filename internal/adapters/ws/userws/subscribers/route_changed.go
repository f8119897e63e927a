package subscribers

import "lorryadmin/internal/domain"

type RouteChanged struct {
	hub Broadcaster
}

func NewRouteChanged(hub Broadcaster) *RouteChanged {
	return &RouteChanged{hub: hub}
}

func (s *RouteChanged) Handle(event any) {
	evt, ok := event.(domain.EventRouteChanged)
	if !ok {
		return
	}

	s.hub.Broadcast(&domain.WsServerEvent{
		Channel: domain.WsChannelState,
		Event:   domain.TopicRouteChanged,
		Payload: evt,
	})
}
