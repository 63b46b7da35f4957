package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"scrapectl/pkg/actions"
	"scrapectl/pkg/models"
)

// DefaultTimeout bounds a single remote call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

const maxDetailLen = 300

// Client calls the remote extraction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the service root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CheckHealth verifies the service is available
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newHTTPStatusError(resp.StatusCode, "")
	}
	return nil
}

// Do sends one operation request and returns the decoded payload.
// A payload carrying an "error" field is returned together with a
// server_reported error.
func (c *Client) Do(ctx context.Context, r actions.Request) (models.Payload, error) {
	httpReq, err := c.buildRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newInvalidResponseError("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newHTTPStatusError(resp.StatusCode, serverDetail(body))
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, err
	}
	if msg, ok := payload.ErrorMessage(); ok {
		return payload, newServerReportedError(msg)
	}
	return payload, nil
}

// buildRequest creates an HTTP request with proper headers
func (c *Client) buildRequest(ctx context.Context, r actions.Request) (*http.Request, error) {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decodePayload accepts a JSON object, or wraps a JSON array under "items".
func decodePayload(body []byte) (models.Payload, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, newInvalidResponseError("response is not JSON", err)
	}
	switch v := raw.(type) {
	case map[string]any:
		return models.Payload(v), nil
	case []any:
		return models.Payload{models.FieldItems: v}, nil
	}
	return nil, newInvalidResponseError(fmt.Sprintf("unexpected response type %T", raw), nil)
}

// serverDetail extracts the best message a failed response offers:
// FastAPI's "detail", then "error", then the raw body.
func serverDetail(body []byte) string {
	var errorResp map[string]any
	if err := json.Unmarshal(body, &errorResp); err == nil {
		for _, key := range []string{"detail", "error"} {
			switch v := errorResp[key].(type) {
			case nil:
			case string:
				if v != "" {
					return v
				}
			default:
				data, _ := json.Marshal(v)
				return string(data)
			}
		}
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxDetailLen {
		cut := maxDetailLen
		for cut > 0 && !utf8.RuneStart(detail[cut]) {
			cut--
		}
		detail = detail[:cut] + "..."
	}
	return detail
}

func classifyTransportError(ctx context.Context, err error) *ScraperError {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return newCancelledError(err)
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return newTimeoutError(err)
	}
	return newTransportError(err)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
