package subscribers

import "lorryadmin/internal/domain"

type OutcomeRecorded struct {
	hub Broadcaster
}

func NewOutcomeRecorded(hub Broadcaster) *OutcomeRecorded {
	return &OutcomeRecorded{hub: hub}
}

func (s *OutcomeRecorded) Handle(event any) {
	evt, ok := event.(domain.EventOutcomeRecorded)
	if !ok {
		return
	}

	s.hub.Broadcast(&domain.WsServerEvent{
		Channel: domain.WsChannelState,
		Event:   domain.TopicOutcomeRecorded,
		Payload: evt,
	})
}
