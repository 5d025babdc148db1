package domain

import "time"

// Report schedules a client can be on. ScheduleNone means reports are only
// compiled on demand.
const (
	ScheduleNone    = "none"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
)

// Client is an agency's managed customer. Its ad accounts are connected for
// reporting and its recipients receive the compiled PDFs.
type Client struct {
	ID        string
	AgencyID  string
	Name      string
	Schedule  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidSchedule reports whether s is a known report schedule.
func ValidSchedule(s string) bool {
	switch s {
	case ScheduleNone, ScheduleWeekly, ScheduleMonthly:
		return true
	}
	return false
}

// Recipient is an email address that receives a client's reports.
type Recipient struct {
	ID        string
	ClientID  string
	Email     string
	Name      string
	CreatedAt time.Time
}
