package domain

import "time"

// SpiritualEvent mirrors Event for the dedicated spiritual programme listing.
type SpiritualEvent struct {
	ID                  string
	Title               string
	ShortDescription    string
	LongDescription     string
	EventDate           time.Time
	MainImageKey        string
	AdditionalImageKeys []string
	Videos              []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
