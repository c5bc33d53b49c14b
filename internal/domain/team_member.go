package domain

import "time"

// TeamMember is a person shown on the foundation's team page.
type TeamMember struct {
	ID          string
	Name        string
	Role        string
	Description string
	ImageKey    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
