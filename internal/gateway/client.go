package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/flowforge/flowforge/internal/campaign"
)

// Client is a Gateway backed by the flowforge HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new API client. apiKey may be empty when the server
// runs without authentication.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// request performs an HTTP request against the API.
func (c *Client) request(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("API error: %s", errResp.Error)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// List fetches all campaigns.
func (c *Client) List(ctx context.Context) ([]campaign.Campaign, error) {
	var out []campaign.Campaign
	if err := c.request(ctx, http.MethodGet, "/api/v1/campaigns", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single campaign.
func (c *Client) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	var out campaign.Campaign
	if err := c.request(ctx, http.MethodGet, "/api/v1/campaigns/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new campaign.
func (c *Client) Create(ctx context.Context, cam *campaign.Campaign) (*campaign.Campaign, error) {
	var out campaign.Campaign
	if err := c.request(ctx, http.MethodPost, "/api/v1/campaigns", cam, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update merges the patch into the stored campaign.
func (c *Client) Update(ctx context.Context, id string, patch CampaignPatch) (*campaign.Campaign, error) {
	var out campaign.Campaign
	if err := c.request(ctx, http.MethodPatch, "/api/v1/campaigns/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a campaign.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/api/v1/campaigns/"+url.PathEscape(id), nil, nil)
}

// UpdateStatus changes only the campaign's status.
func (c *Client) UpdateStatus(ctx context.Context, id string, status campaign.Status) (*campaign.Campaign, error) {
	body := struct {
		Status campaign.Status `json:"status"`
	}{Status: status}
	var out campaign.Campaign
	if err := c.request(ctx, http.MethodPut, "/api/v1/campaigns/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
