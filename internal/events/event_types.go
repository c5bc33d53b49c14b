package events

import (
	"time"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDarshanRequestCreated EventType = "darshan_request_created"
	EventDarshanStatusChanged  EventType = "darshan_status_changed"
	EventDarshanRequestDeleted EventType = "darshan_request_deleted"
)

// Actor encapsulates actor metadata for an event. UserID is nil for
// anonymous actors, such as the public create endpoint.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event is the envelope published on the dispatcher.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
	Actor     Actor     `json:"actor"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DarshanCreatedPayload describes a newly submitted request.
type DarshanCreatedPayload struct {
	Name           string `json:"name"`
	LeadID         string `json:"lead_id"`
	NumberOfPeople int    `json:"number_of_people"`
}

// DarshanStatusChangedPayload describes a lifecycle transition.
type DarshanStatusChangedPayload struct {
	OldStatus domain.DarshanStatus `json:"old_status"`
	NewStatus domain.DarshanStatus `json:"new_status"`
	Reason    string               `json:"reason,omitempty"`
}
