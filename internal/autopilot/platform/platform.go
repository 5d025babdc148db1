// Package platform describes the supported ad platforms. Each platform is a
// configuration record, not a separate handler: the OAuth endpoints differ
// only in URLs, scopes, scope delimiter, and credentials.
package platform

import (
	"net/url"
	"strings"
)

// Platform identifiers. These appear in URLs, the oauth_states table, and
// the connections table.
const (
	MetaAds     = "meta_ads"
	LinkedInAds = "linkedin_ads"
)

// Config is everything that differs between ad platforms.
type Config struct {
	ID           string
	Name         string
	AuthorizeURL string
	TokenURL     string

	// Scopes requested at consent, joined with ScopeDelimiter. Meta wants
	// commas, LinkedIn wants spaces; each platform's delimiter must be
	// matched exactly.
	Scopes         []string
	ScopeDelimiter string

	ClientID     string
	ClientSecret string
}

// BuildAuthorizeURL constructs the consent screen URL for this platform.
// Parameter names follow RFC 6749: response_type=code, client_id,
// redirect_uri, scope, state.
func (c Config) BuildAuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", strings.Join(c.Scopes, c.ScopeDelimiter))
	q.Set("state", state)

	return c.AuthorizeURL + "?" + q.Encode()
}

// Defaults returns the built-in platform definitions with the supplied
// credentials. Credentials come from configuration; everything else is fixed
// by the platforms' OAuth implementations.
func Defaults(metaClientID, metaClientSecret, linkedinClientID, linkedinClientSecret string) []Config {
	return []Config{
		{
			ID:             MetaAds,
			Name:           "Meta Ads",
			AuthorizeURL:   "https://www.facebook.com/v19.0/dialog/oauth",
			TokenURL:       "https://graph.facebook.com/v19.0/oauth/access_token",
			Scopes:         []string{"ads_read", "read_insights", "business_management"},
			ScopeDelimiter: ",",
			ClientID:       metaClientID,
			ClientSecret:   metaClientSecret,
		},
		{
			ID:             LinkedInAds,
			Name:           "LinkedIn Ads",
			AuthorizeURL:   "https://www.linkedin.com/oauth/v2/authorization",
			TokenURL:       "https://www.linkedin.com/oauth/v2/accessToken",
			Scopes:         []string{"r_ads", "r_ads_reporting"},
			ScopeDelimiter: " ",
			ClientID:       linkedinClientID,
			ClientSecret:   linkedinClientSecret,
		},
	}
}
