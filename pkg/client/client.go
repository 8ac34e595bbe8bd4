// Package client is a thin Go client for the bank registry JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the collection URL of a locally running server.
const DefaultBaseURL = "http://localhost:8080/api/banks"

// Bank is a bank as returned by the API.
type Bank struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bank api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("bank api: %d %s", e.StatusCode, e.Message)
}

// Client issues one HTTP call per operation against the banks collection.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the collection at baseURL. A nil httpClient gets a
// client with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// List returns every bank.
func (c *Client) List(ctx context.Context) ([]Bank, error) {
	var banks []Bank
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &banks); err != nil {
		return nil, err
	}
	return banks, nil
}

// Get returns the bank with the given id.
func (c *Client) Get(ctx context.Context, id int64) (*Bank, error) {
	var bank Bank
	if err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &bank); err != nil {
		return nil, err
	}
	return &bank, nil
}

// Create creates a bank and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, name, location string) (*Bank, error) {
	var bank Bank
	body := map[string]string{"name": name, "location": location}
	if err := c.do(ctx, http.MethodPost, c.baseURL, body, &bank); err != nil {
		return nil, err
	}
	return &bank, nil
}

// Update replaces name and location of a bank.
func (c *Client) Update(ctx context.Context, id int64, name, location string) (*Bank, error) {
	var bank Bank
	body := map[string]string{"name": name, "location": location}
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), body, &bank); err != nil {
		return nil, err
	}
	return &bank, nil
}

// Patch updates only the non-nil fields of a bank.
func (c *Client) Patch(ctx context.Context, id int64, name, location *string) (*Bank, error) {
	body := map[string]string{}
	if name != nil {
		body["name"] = *name
	}
	if location != nil {
		body["location"] = *location
	}

	var bank Bank
	if err := c.do(ctx, http.MethodPatch, c.itemURL(id), body, &bank); err != nil {
		return nil, err
	}
	return &bank, nil
}

// Delete deletes a bank.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id int64) string {
	return c.baseURL + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
