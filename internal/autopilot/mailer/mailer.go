// Package mailer is the HTTP client for the transactional email provider.
// Like the renderer, it is constructed once at startup and injected.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the email provider.
type Client struct {
	baseURL string
	apiKey  string
	from    string
	httpc   *http.Client
}

func New(baseURL, apiKey, from string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, from: from, httpc: httpc}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers one email and returns the provider's message id.
func (c *Client) Send(ctx context.Context, to, subject, html string) (string, error) {
	payload, err := json.Marshal(sendRequest{From: c.from, To: to, Subject: subject, HTML: html})
	if err != nil {
		return "", fmt.Errorf("mailer: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("mailer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailer: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("mailer: provider returned %d", resp.StatusCode)
	}

	var body sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("mailer: decode response: %w", err)
	}
	return body.ID, nil
}
