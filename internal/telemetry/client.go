package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody bounds how much of a non-2xx body is kept as the error message.
const maxErrorBody = 4 << 10

// Client fetches chart data from the Telemetry API.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client for the API rooted at baseURL.
// Every request is bounded by timeout in addition to the caller's context.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChartDataURL returns the endpoint for the most recent samples of a building.
func (c *Client) ChartDataURL(buildingID, samples int) string {
	return fmt.Sprintf("%s/api/chart-data/building/%d/ticks/%d", c.baseURL, buildingID, samples)
}

// FetchChartData requests the most recent samples readings of a building.
//
// Parameters:
//   - ctx: Cancels the in-flight request
//   - buildingID: Building to fetch
//   - samples: Number of samples requested from the server
//
// Returns:
//   - *Response: Decoded and length-checked document
//   - error: *FetchError on transport failure, non-2xx status or malformed body
func (c *Client) FetchChartData(ctx context.Context, buildingID, samples int) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ChartDataURL(buildingID, samples), nil)
	if err != nil {
		return nil, &FetchError{BuildingID: buildingID, Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{BuildingID: buildingID, Message: fmt.Sprintf("request failed: %v", err), Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best-effort message
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &FetchError{BuildingID: buildingID, Status: resp.StatusCode, Message: msg}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &FetchError{BuildingID: buildingID, Message: fmt.Sprintf("request failed: %v", ctxErr), Err: ctxErr}
		}
		return nil, &FetchError{
			BuildingID: buildingID,
			Message:    fmt.Sprintf("decoding response: %v", err),
			Err:        errors.Join(ErrMalformedResponse, err),
		}
	}
	if err := out.Validate(); err != nil {
		return nil, &FetchError{BuildingID: buildingID, Message: err.Error(), Err: err}
	}
	return &out, nil
}
