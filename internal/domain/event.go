package domain

import "time"

// EventType categorizes foundation events.
type EventType string

const (
	EventTypeHealth    EventType = "HEALTH"
	EventTypeDonation  EventType = "DONATION"
	EventTypeEducation EventType = "EDUCATION"
	EventTypeTraining  EventType = "TRAINING"
	EventTypeSpiritual EventType = "SPIRITUAL"
)

// IsValid reports whether the event type is known.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeHealth, EventTypeDonation, EventTypeEducation, EventTypeTraining, EventTypeSpiritual:
		return true
	}
	return false
}

// Event is a foundation event published on the site. Image fields hold blob
// store keys; presigned URLs are attached at the transport layer.
type Event struct {
	ID                  string
	Title               string
	ShortDescription    string
	LongDescription     string
	EventType           EventType
	EventDate           time.Time
	MainImageKey        string
	AdditionalImageKeys []string
	Videos              []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
