// Package renderer is the HTTP client for the external HTML-to-PDF
// rendering service. The client is constructed once at startup and injected
// wherever rendering is needed.
package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the rendering service.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, httpc: httpc}
}

type renderRequest struct {
	HTML     string `json:"html"`
	Filename string `json:"filename"`
}

type renderResponse struct {
	URL string `json:"url"`
}

// RenderPDF submits HTML and returns the URL of the stored PDF artifact.
func (c *Client) RenderPDF(ctx context.Context, html, filename string) (string, error) {
	payload, err := json.Marshal(renderRequest{HTML: html, Filename: filename})
	if err != nil {
		return "", fmt.Errorf("renderer: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("renderer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("renderer: render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("renderer: service returned %d", resp.StatusCode)
	}

	var body renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("renderer: decode response: %w", err)
	}
	if body.URL == "" {
		return "", errors.New("renderer: response missing artifact url")
	}
	return body.URL, nil
}
