package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ResearchAgent/internal/domain"
	"ResearchAgent/internal/ports"
)

// Client talks to an in-house summarization service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Summarizer = (*Client)(nil)

// NewClient creates a reusable HTTP client. A nil httpClient gets a 60s
// timeout.
func NewClient(endpoint, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     httpClient,
	}
}

type summarizeRequest struct {
	Kind     string   `json:"kind"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Authors  []string `json:"authors,omitempty"`
	Channel  string   `json:"channel,omitempty"`
	URL      string   `json:"url,omitempty"`
}

// Summarize requests a summary for the candidate's title and body text.
func (c *Client) Summarize(ctx context.Context, candidate domain.Candidate) (string, error) {
	payload := summarizeRequest{
		Kind:     string(candidate.Kind),
		Title:    candidate.Title,
		Abstract: candidate.BodyText,
		Authors:  candidate.Paper.Authors,
		Channel:  candidate.Video.Channel,
		URL:      candidate.URL,
	}

	var resp struct {
		Summary string `json:"summary"`
	}

	if err := c.post(ctx, "/summarize", payload, &resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Summary), nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
