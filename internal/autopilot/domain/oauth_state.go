package domain

import "time"

// OAuthState correlates an in-flight platform authorization attempt with the
// agency, client, platform, and user that initiated it. The opaque state
// token handed to the browser is stored hashed; a record is consumed
// (deleted) at most once and is never valid past ExpiresAt.
type OAuthState struct {
	ID        string
	TokenHash string
	ClientID  string
	AgencyID  string
	Platform  string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
