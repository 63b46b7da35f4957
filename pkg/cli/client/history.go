package client

import (
	"context"
	"fmt"
	"net/http"

	"scrapectl/pkg/models"
)

// ListHistory retrieves every entry, newest first
func (c *Client) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	var resp struct {
		Entries []models.HistoryEntry `json:"entries"`
	}
	if err := c.doGetRequest(ctx, "/api/v1/history", &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// GetHistory retrieves the entry at index
func (c *Client) GetHistory(ctx context.Context, index int) (models.HistoryEntry, error) {
	var entry models.HistoryEntry
	if err := c.doGetRequest(ctx, fmt.Sprintf("/api/v1/history/%d", index), &entry); err != nil {
		return models.HistoryEntry{}, err
	}
	return entry, nil
}

// ExportHistory retrieves the entry at index as a Markdown JSON block
func (c *Client) ExportHistory(ctx context.Context, index int) (string, error) {
	req, err := c.buildRequest(ctx, http.MethodGet, fmt.Sprintf("/api/v1/history/%d/markdown", index))
	if err != nil {
		return "", err
	}
	body, err := c.doRequest(req)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DeleteHistory deletes the entry at index
func (c *Client) DeleteHistory(ctx context.Context, index int) error {
	return c.doDeleteRequest(ctx, fmt.Sprintf("/api/v1/history/%d", index))
}

// ClearHistory deletes every entry
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.doDeleteRequest(ctx, "/api/v1/history")
}
