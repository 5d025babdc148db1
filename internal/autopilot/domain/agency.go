package domain

import "time"

// Agency is a tenant organisation. It owns clients and team members.
type Agency struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership associates a user with an agency. Membership is the only
// authorization check in the system: every client, connection, and report
// operation verifies the caller belongs to the owning agency.
type Membership struct {
	AgencyID  string
	UserID    string
	Role      string // "owner" or "member"
	CreatedAt time.Time
}
