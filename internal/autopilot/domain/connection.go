package domain

import "time"

// Connection is a client's authorized link to an ad platform, written by the
// OAuth callback after a successful code exchange.
type Connection struct {
	ID           string
	ClientID     string
	AgencyID     string
	Platform     string
	AccessToken  string
	RefreshToken string
	AccountName  string
	ExpiresAt    *time.Time // nil for platforms that issue non-expiring tokens
	ConnectedBy  string
	CreatedAt    time.Time
}
