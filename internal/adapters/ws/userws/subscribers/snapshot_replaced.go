package subscribers

import "lorryadmin/internal/domain"

type SnapshotReplaced struct {
	hub Broadcaster
}

func NewSnapshotReplaced(hub Broadcaster) *SnapshotReplaced {
	return &SnapshotReplaced{hub: hub}
}

func (s *SnapshotReplaced) Handle(event any) {
	evt, ok := event.(domain.EventSnapshotReplaced)
	if !ok {
		return
	}

	s.hub.Broadcast(&domain.WsServerEvent{
		Channel: domain.WsChannelFeed,
		Event:   domain.TopicSnapshotReplaced,
		Payload: evt,
	})
}
