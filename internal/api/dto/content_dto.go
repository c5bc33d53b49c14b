package dto

import (
	"time"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

// EventResponse is the wire representation of an event. Image fields carry
// presigned read URLs rather than blob keys.
type EventResponse struct {
	ID               string           `json:"id"`
	Title            string           `json:"eventTitle"`
	ShortDescription string           `json:"shortDescription"`
	LongDescription  string           `json:"longDescription"`
	EventType        domain.EventType `json:"eventType"`
	EventDate        time.Time        `json:"eventDate"`
	MainImage        string           `json:"mainImage"`
	AdditionalImages []string         `json:"additionalImages"`
	Videos           []string         `json:"videos"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// EventListResponse pages events with a total count.
type EventListResponse struct {
	Total int64           `json:"total"`
	Items []EventResponse `json:"items"`
}

// SpiritualEventResponse mirrors EventResponse without the type field.
type SpiritualEventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"eventTitle"`
	ShortDescription string    `json:"shortDescription"`
	LongDescription  string    `json:"longDescription"`
	EventDate        time.Time `json:"eventDate"`
	MainImage        string    `json:"mainImage"`
	AdditionalImages []string  `json:"additionalImages"`
	Videos           []string  `json:"videos"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// SpiritualEventListResponse pages spiritual events with a total count.
type SpiritualEventListResponse struct {
	Total int64                    `json:"total"`
	Items []SpiritualEventResponse `json:"items"`
}

// TeamMemberResponse is the wire representation of a team member.
type TeamMemberResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamMemberListResponse pages team members with a total count.
type TeamMemberListResponse struct {
	Total int64                `json:"total"`
	Items []TeamMemberResponse `json:"items"`
}
