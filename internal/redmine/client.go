// Package redmine is a minimal client for the Redmine REST API, covering the
// endpoints needed to plan and submit time entries.
package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds the connection settings for a Redmine server.
type Config struct {
	// Endpoint is the base URL of the Redmine instance, e.g. "https://redmine.example.com".
	Endpoint string
	// APIKey is the per-user API access key (My account → API access key).
	APIKey string
}

// Client is an authenticated Redmine API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Redmine client for the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends an authenticated request and decodes the JSON response into out.
// A nil out skips decoding. Any non-2xx status is returned as an error with
// the response body included.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Redmine-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("redmine API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("redmine API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding redmine response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

// User is the authenticated Redmine account.
type User struct {
	ID        int    `json:"id"`
	Login     string `json:"login"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Mail      string `json:"mail"`
}

// Name returns the user's display name.
func (u User) Name() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Login
	}
	return name
}

// CurrentUser fetches the account the API key belongs to. It doubles as a
// connection test: any endpoint, key, or network problem surfaces here.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, "/users/current.json", nil, &resp); err != nil {
		return User{}, fmt.Errorf("fetching current user: %w", err)
	}
	return resp.User, nil
}
