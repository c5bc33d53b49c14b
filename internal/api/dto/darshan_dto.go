package dto

import (
	"time"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

// CreateDarshanRequest payload for the public request form.
type CreateDarshanRequest struct {
	Name           string `json:"name"`
	PhoneNumber    string `json:"phoneNumber"`
	Address        string `json:"address"`
	ReasonToVisit  string `json:"reasonToVisit"`
	NumberOfPeople int    `json:"numberOfPeople"`
	LeadID         string `json:"leadId"`
}

// LeadActionRequest payload. Status true approves to the PA queue, false rejects.
type LeadActionRequest struct {
	Status bool   `json:"status"`
	Reason string `json:"reason"`
}

// PAActionRequest payload. Approval requires both schedule fields.
type PAActionRequest struct {
	Status            bool       `json:"status"`
	Reason            string     `json:"reason"`
	ScheduledDateTime *time.Time `json:"scheduledDateTime"`
	ScheduledLocation *string    `json:"scheduledLocation"`
}

// DarshanResponse is the wire representation of a request.
type DarshanResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	PhoneNumber       string               `json:"phoneNumber"`
	Address           string               `json:"address"`
	ReasonToVisit     string               `json:"reasonToVisit"`
	NumberOfPeople    int                  `json:"numberOfPeople"`
	Status            domain.DarshanStatus `json:"status"`
	ScheduledDateTime *time.Time           `json:"scheduledDateTime,omitempty"`
	ScheduledLocation *string              `json:"scheduledLocation,omitempty"`
	Reason            *string              `json:"reason,omitempty"`
	LeadID            string               `json:"leadId"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// DarshanListResponse pages requests with a total count.
type DarshanListResponse struct {
	Total int64             `json:"total"`
	Items []DarshanResponse `json:"items"`
}
