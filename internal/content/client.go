// Package content talks to the Strapi-style content API that serves the
// catalog, material and supplier collections.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sourcetalk/internal/logging"
	"sourcetalk/internal/metrics"
	"sourcetalk/internal/pagination"
	"sourcetalk/internal/query"
)

// =============================================================================
// CLIENT
// =============================================================================

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client issues authenticated GET requests against the content API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a content API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// APIError is a non-2xx response from the content API.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error: %d %s", e.StatusCode, statusText(e.StatusCode, e.Status))
}

// statusText extracts "Internal Server Error" from "500 Internal Server Error",
// falling back to the standard text for the code.
func statusText(code int, status string) string {
	if _, text, ok := strings.Cut(status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(code)
}

// RawPage is one undecoded page of records.
type RawPage struct {
	Data []json.RawMessage `json:"data"`
	Meta struct {
		Pagination pagination.Pagination `json:"pagination"`
	} `json:"meta"`
}

// Fetch requests one page of resource with the given query parameters.
func (c *Client) Fetch(ctx context.Context, resource query.Resource, params query.Params) (*RawPage, error) {
	endpoint := c.baseURL + "/" + string(resource)
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	logging.APIDebug("GET %s", endpoint)
	timer := metrics.NewTimer()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.RecordAPICall(string(resource), 0, timer.Duration())
		logging.APIError("%s request failed: %v", resource, err)
		return nil, fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	metrics.RecordAPICall(string(resource), resp.StatusCode, timer.Duration())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
		logging.APIWarn("%s: %v", resource, apiErr)
		return nil, apiErr
	}

	var page RawPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", resource, err)
	}

	logging.APIDebug("%s: %d records, page %d/%d, total %d",
		resource, len(page.Data), page.Meta.Pagination.Page, page.Meta.Pagination.PageCount, page.Meta.Pagination.Total)
	return &page, nil
}

// Total returns the number of records in resource, fetching a single-item
// page.
func (c *Client) Total(ctx context.Context, resource query.Resource) (int, error) {
	params, err := query.Build(resource, query.Request{Page: 1, PageSize: 1})
	if err != nil {
		return 0, err
	}
	page, err := c.Fetch(ctx, resource, params)
	if err != nil {
		return 0, err
	}
	return page.Meta.Pagination.Total, nil
}
