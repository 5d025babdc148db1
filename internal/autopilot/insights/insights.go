// Package insights fetches performance rows from the ad platforms' reporting
// APIs using a connection's stored access token.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/platform"
)

// Row is one metric line of a compiled report.
type Row struct {
	Platform    string  `json:"platform"`
	Campaign    string  `json:"campaign"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	SpendCents  int64   `json:"spend_cents"`
	CTR         float64 `json:"ctr"`
}

// Client fetches insight rows. Endpoint overrides exist so tests (and
// self-hosted proxies) can point at a fake platform API.
type Client struct {
	httpc *http.Client

	// Per-platform reporting endpoints. Defaults target the real APIs.
	endpoints map[string]string
}

func New(httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpc: httpc,
		endpoints: map[string]string{
			platform.MetaAds:     "https://graph.facebook.com/v19.0/me/insights",
			platform.LinkedInAds: "https://api.linkedin.com/rest/adAnalytics",
		},
	}
}

// WithEndpoint overrides the reporting endpoint for a platform.
func (c *Client) WithEndpoint(platformID, endpoint string) *Client {
	c.endpoints[platformID] = endpoint
	return c
}

// Fetch returns the insight rows for one connection over a period.
func (c *Client) Fetch(ctx context.Context, platformID, accessToken string, from, to time.Time) ([]Row, error) {
	endpoint, ok := c.endpoints[platformID]
	if !ok {
		return nil, platform.ErrUnsupported
	}

	q := url.Values{}
	q.Set("since", from.UTC().Format("2006-01-02"))
	q.Set("until", to.UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("insights: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("insights: fetch %s: %w", platformID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("insights: %s returned %d", platformID, resp.StatusCode)
	}

	var body struct {
		Data []Row `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("insights: decode %s response: %w", platformID, err)
	}

	for i := range body.Data {
		body.Data[i].Platform = platformID
	}
	return body.Data, nil
}
