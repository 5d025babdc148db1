package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnsupported reports an unknown platform identifier.
var ErrUnsupported = errors.New("platform: unsupported platform")

// Token is the result of exchanging an authorization code.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time // nil when the platform issues non-expiring tokens
}

// Registry holds the configured platforms and performs code exchanges with a
// single injected HTTP client. It is constructed once at startup; there are
// no lazily initialised globals.
type Registry struct {
	byID  map[string]Config
	httpc *http.Client
}

func NewRegistry(httpc *http.Client, configs ...Config) *Registry {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	byID := make(map[string]Config, len(configs))
	for _, c := range configs {
		byID[c.ID] = c
	}
	return &Registry{byID: byID, httpc: httpc}
}

// Get returns the configuration for a platform id.
func (r *Registry) Get(id string) (Config, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// IDs returns the configured platform identifiers.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	return out
}

// Exchange redeems an authorization code at the platform's token endpoint.
func (r *Registry) Exchange(ctx context.Context, platformID, code, redirectURI string) (Token, error) {
	cfg, ok := r.byID[platformID]
	if !ok {
		return Token{}, ErrUnsupported
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("platform: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpc.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("platform: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("platform: token endpoint returned %d", resp.StatusCode)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Token{}, fmt.Errorf("platform: decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return Token{}, errors.New("platform: token response missing access_token")
	}

	token := Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
	}
	if body.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
		token.ExpiresAt = &t
	}
	return token, nil
}
