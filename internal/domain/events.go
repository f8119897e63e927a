package domain

// Topic names used on the event bus and as the ws event field.
const (
	TopicRouteChanged     = "route_changed"
	TopicOutcomeRecorded  = "outcome_recorded"
	TopicSnapshotReplaced = "snapshot_replaced"
)

type EventRouteChanged struct {
	Route Route `json:"route"`
}

type EventOutcomeRecorded struct {
	Flow    FlowKind    `json:"flow"`
	Outcome AuthOutcome `json:"outcome"`
	Message string      `json:"message"`
}

type EventSnapshotReplaced struct {
	Snapshot ListSnapshot `json:"snapshot"`
}

// AppState is what the rendering layer observes.
type AppState struct {
	Route        Route                 `json:"route"`
	LastOutcome  *EventOutcomeRecorded `json:"last_outcome,omitempty"`
	ListSnapshot *ListSnapshot         `json:"list_snapshot,omitempty"`
}
