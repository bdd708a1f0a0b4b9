package uphere

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orbitwatch/uphere-go/pkg/observability"
)

// Client issues authenticated calls against the UpHere Space API.
//
// Every call passes through the rate limiter before it is attempted, and
// 429 responses are retried on the schedule in retry.go. The client keeps
// request accounting (total attempts, last attempt time) that RequestStats
// exposes; retries count individually.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	apiHost     string
	limiter     *RateLimiter
	clock       Clock
	maxRetries  int
	backoffUnit time.Duration

	mu            sync.Mutex
	totalRequests int64
	lastRequestAt time.Time
}

// NewClient validates cfg and builds a client. A missing API key is a
// configuration error raised here, before any network attempt.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	limiter, err := NewRateLimiter(cfg.RequestsPerSecond)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     "https://" + cfg.APIHost,
		apiKey:      cfg.APIKey,
		apiHost:     cfg.APIHost,
		limiter:     limiter,
		clock:       systemClock{},
		maxRetries:  defaultMaxRetries,
		backoffUnit: defaultBackoffUnit,
	}, nil
}

// SatelliteList fetches one page of the satellite catalog. page is
// 1-based; opts filters are applied server-side by the upstream.
func (c *Client) SatelliteList(ctx context.Context, page int, opts ListOptions) ([]SatelliteRecord, error) {
	if page < 1 {
		return nil, New(ErrCodeInvalidInput, "page must be a positive integer, got %d", page)
	}
	query := url.Values{"page": {strconv.Itoa(page)}}
	if opts.Text != "" {
		query.Set("text", opts.Text)
	}
	if opts.Country != "" {
		query.Set("country", opts.Country)
	}

	var records []SatelliteRecord
	if err := c.get(ctx, "/satellite/list", query, false, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Countries fetches the set of launch countries usable as list filters.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := c.get(ctx, "/satellite/list/countries", nil, false, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// LaunchSites fetches the set of known launch sites.
func (c *Client) LaunchSites(ctx context.Context) ([]LaunchSite, error) {
	var sites []LaunchSite
	if err := c.get(ctx, "/satellite/list/launch-sites", nil, false, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// SatelliteOrbit fetches the predicted ground track of a satellite over
// periodMinutes. Tier-gated: a 404 means the subscription lacks the
// endpoint, surfaced as EndpointUnavailableError.
func (c *Client) SatelliteOrbit(ctx context.Context, noradID string, periodMinutes int) ([]OrbitPoint, error) {
	if err := validateNoradID(noradID); err != nil {
		return nil, err
	}
	if periodMinutes <= 0 {
		return nil, New(ErrCodeInvalidInput, "period must be a positive number of minutes, got %d", periodMinutes)
	}

	path := fmt.Sprintf("/satellite/%s/orbit", url.PathEscape(noradID))
	query := url.Values{"period": {strconv.Itoa(periodMinutes)}}

	var points []OrbitPoint
	if err := c.get(ctx, path, query, true, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// SatelliteDetails fetches the detail record for a satellite. Tier-gated.
func (c *Client) SatelliteDetails(ctx context.Context, noradID string) (*SatelliteDetails, error) {
	if err := validateNoradID(noradID); err != nil {
		return nil, err
	}

	var details SatelliteDetails
	path := fmt.Sprintf("/satellite/%s/details", url.PathEscape(noradID))
	if err := c.get(ctx, path, nil, true, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// SatelliteLocation fetches the current position of a satellite. Tier-gated.
func (c *Client) SatelliteLocation(ctx context.Context, noradID string) (*SatelliteLocation, error) {
	if err := validateNoradID(noradID); err != nil {
		return nil, err
	}

	var loc SatelliteLocation
	path := fmt.Sprintf("/satellite/%s/location", url.PathEscape(noradID))
	if err := c.get(ctx, path, nil, true, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// SetRateLimit reconfigures the limiter. Takes effect on the next
// acquisition, never retroactively.
func (c *Client) SetRateLimit(rps float64) error {
	return c.limiter.SetRate(rps)
}

// RequestStats returns a snapshot of the client's request accounting.
func (c *Client) RequestStats() RequestStats {
	c.mu.Lock()
	total := c.totalRequests
	last := c.lastRequestAt
	c.mu.Unlock()

	wait := c.limiter.TimeUntilNext()
	return RequestStats{
		RateLimit:     c.limiter.Rate(),
		TotalRequests: total,
		LastRequestAt: last,
		TimeUntilNext: wait,
		CanRequestNow: wait == 0,
	}
}

// get runs the acquire-attempt-retry loop for one logical request and
// decodes the successful response body into v.
func (c *Client) get(ctx context.Context, path string, query url.Values, gated bool, v any) error {
	sched := newRetrySchedule(c.maxRetries, c.backoffUnit)

	for {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}

		requestID := uuid.NewString()
		status, body, err := c.attempt(ctx, requestID, path, query)
		if err != nil {
			return Wrap(ErrCodeNetwork, err, "request to %s failed", path)
		}

		switch {
		case status == http.StatusOK:
			if err := json.Unmarshal(body, v); err != nil {
				return Wrap(ErrCodeUpstream, err, "decode response from %s", path)
			}
			return nil

		case status == http.StatusTooManyRequests:
			wait, ok := sched.Next()
			if !ok {
				return &RateLimitExhaustedError{Attempts: sched.Attempts(), Waited: sched.Waited()}
			}
			observability.HTTP().OnRetry(ctx, requestID, path, sched.retries, wait)
			if err := c.clock.Sleep(ctx, wait); err != nil {
				return err
			}

		case status == http.StatusNotFound && gated:
			return &EndpointUnavailableError{Endpoint: path}

		case status == http.StatusUnauthorized:
			return New(ErrCodeConfig, "authentication failed (401): check your API key")

		default:
			return &UpstreamError{StatusCode: status, Body: string(body)}
		}
	}
}

// attempt performs a single HTTP attempt. Accounting is updated exactly
// once per attempt, whether it succeeds or fails.
func (c *Client) attempt(ctx context.Context, requestID, path string, query url.Values) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)
	req.Header.Set("Content-Type", "application/json")

	observability.HTTP().OnRequest(ctx, requestID, http.MethodGet, c.apiHost, path)
	start := c.clock.Now()

	resp, err := c.httpClient.Do(req)
	c.recordAttempt()
	if err != nil {
		observability.HTTP().OnError(ctx, requestID, http.MethodGet, c.apiHost, path, err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.HTTP().OnError(ctx, requestID, http.MethodGet, c.apiHost, path, err)
		return 0, nil, err
	}

	observability.HTTP().OnResponse(ctx, requestID, http.MethodGet, c.apiHost, path,
		resp.StatusCode, c.clock.Now().Sub(start))
	return resp.StatusCode, body, nil
}

func (c *Client) recordAttempt() {
	c.mu.Lock()
	c.totalRequests++
	c.lastRequestAt = c.clock.Now()
	c.mu.Unlock()
}

func validateNoradID(noradID string) error {
	if noradID == "" {
		return New(ErrCodeInvalidInput, "NORAD ID must not be empty")
	}
	return nil
}
