// Package geocode validates free-text city names against a
// Nominatim-compatible search endpoint. The lookup is reduced to a boolean:
// a city is valid iff the provider returns at least one match.
//
// The client performs a single request per call. There is no retry, no
// caching of prior lookups, and no timeout beyond the configured HTTP
// client timeout. Transport and provider failures are returned to the
// caller, which decides whether to treat them as "invalid" or abort.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tbourn/go-onboarding-backend/internal/config"
)

// Client issues city lookups against a single geocoding provider.
// The zero value is not usable; construct with NewClient.
type Client struct {
	baseURL   string
	userAgent string
	httpc     *http.Client
}

// NewClient builds a Client from configuration. The provider base URL is the
// search root (e.g. "https://nominatim.openstreetmap.org"); "/search" is
// appended per request.
func NewClient(cfg config.GeocodeConfig) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpc:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Validate reports whether the provider knows at least one place matching
// city. The query is sent as free text with a result limit of 1 and the
// configured identifying User-Agent.
//
// A false return with nil error means the provider answered with an empty
// result set. Any transport error, non-200 status, or undecodable body is
// returned as an error.
func (c *Client) Validate(ctx context.Context, city string) (bool, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return false, fmt.Errorf("geocode: lookup %q: %w", city, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("geocode: lookup %q: unexpected status %d", city, resp.StatusCode)
	}

	// Only the result count matters; decode into raw messages.
	var results []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return false, fmt.Errorf("geocode: decode response: %w", err)
	}
	return len(results) > 0, nil
}
