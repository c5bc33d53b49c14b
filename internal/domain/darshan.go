package domain

import "time"

// DarshanStatus enumerates lifecycle states for darshan requests.
type DarshanStatus string

const (
	DarshanStatusPendingLead DarshanStatus = "PENDING_LEAD"
	DarshanStatusPendingPA   DarshanStatus = "PENDING_PA"
	DarshanStatusApproved    DarshanStatus = "APPROVED"
	DarshanStatusRejected    DarshanStatus = "REJECTED"
)

// IsValid reports whether the status is a known lifecycle state.
func (s DarshanStatus) IsValid() bool {
	switch s {
	case DarshanStatusPendingLead, DarshanStatusPendingPA, DarshanStatusApproved, DarshanStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s DarshanStatus) IsTerminal() bool {
	return s == DarshanStatusApproved || s == DarshanStatusRejected
}

// DarshanRequest is the aggregate for visit requests. ScheduledDateTime and
// ScheduledLocation are set only when the request reaches APPROVED through
// the PA decision; Reason records the latest lead or PA decision note.
type DarshanRequest struct {
	ID                string
	Name              string
	PhoneNumber       string
	Address           string
	ReasonToVisit     string
	NumberOfPeople    int
	Status            DarshanStatus
	ScheduledDateTime *time.Time
	ScheduledLocation *string
	Reason            *string
	LeadID            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
