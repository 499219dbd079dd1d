package events

import "time"

const (
	RequestChangedTopic = "timeoff.request.changed"
	PolicyChangedTopic  = "timeoff.policy.changed"
	HolidayChangedTopic = "timeoff.holiday.changed"
)

// RequestChangedEvent is published after a request transition commits. It is
// advisory: consumers use it to refresh caches and views, never to apply
// balance effects.
type RequestChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"` // trace id, not the aggregate
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	TimeOffID  string    `json:"time_off_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PolicyChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	CompanyID  string    `json:"company_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type HolidayChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	CompanyID  string    `json:"company_id"`
	HolidayID  string    `json:"holiday_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
