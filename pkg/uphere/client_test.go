package uphere

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/orbitwatch/uphere-go/pkg/observability"
)

// retryRecorder captures the backoff waits announced via OnRetry.
type retryRecorder struct {
	observability.NoopHTTPHooks

	mu    sync.Mutex
	waits []time.Duration
}

func (r *retryRecorder) OnRetry(_ context.Context, _, _ string, _ int, wait time.Duration) {
	r.mu.Lock()
	r.waits = append(r.waits, wait)
	r.mu.Unlock()
}

func (r *retryRecorder) Waits() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

func newTestClient(t *testing.T, baseURL string) (*Client, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	limiter, err := newRateLimiter(1, clk)
	if err != nil {
		t.Fatal(err)
	}
	return &Client{
		httpClient:  &http.Client{},
		baseURL:     baseURL,
		apiKey:      "test-key",
		apiHost:     "uphere-space1.p.rapidapi.com",
		limiter:     limiter,
		clock:       clk,
		maxRetries:  defaultMaxRetries,
		backoffUnit: defaultBackoffUnit,
	}, clk
}

func TestClient_SatelliteList(t *testing.T) {
	var gotQuery map[string]string
	var gotKey, gotHost string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"page":    r.URL.Query().Get("page"),
			"country": r.URL.Query().Get("country"),
		}
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		w.Write([]byte(`[
			{"name": "ISS (ZARYA)", "number": 25544, "type": "Payload", "country": "US"},
			{"name": "STARLINK-1007", "number": 44713, "type": "Payload"}
		]`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	records, err := client.SatelliteList(context.Background(), 2, ListOptions{Country: "US"})
	if err != nil {
		t.Fatalf("SatelliteList: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Name != "ISS (ZARYA)" {
		t.Errorf("first record name = %q", records[0].Name)
	}
	if gotQuery["page"] != "2" || gotQuery["country"] != "US" {
		t.Errorf("query = %v, want page=2 country=US", gotQuery)
	}
	if gotKey != "test-key" {
		t.Errorf("x-rapidapi-key = %q", gotKey)
	}
	if gotHost != "uphere-space1.p.rapidapi.com" {
		t.Errorf("x-rapidapi-host = %q", gotHost)
	}
}

func TestClient_SatelliteList_InvalidPage(t *testing.T) {
	client, _ := newTestClient(t, "http://unreachable.invalid")
	for _, page := range []int{0, -3} {
		_, err := client.SatelliteList(context.Background(), page, ListOptions{})
		if !Is(err, ErrCodeInvalidInput) {
			t.Errorf("page %d: got %v, want INVALID_INPUT", page, err)
		}
	}
	// Validation failures never reach the network or the accounting.
	if stats := client.RequestStats(); stats.TotalRequests != 0 {
		t.Errorf("TotalRequests = %d, want 0", stats.TotalRequests)
	}
}

func TestClient_RetryThenSuccess(t *testing.T) {
	recorder := &retryRecorder{}
	observability.SetHTTPHooks(recorder)
	t.Cleanup(observability.Reset)

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"name": "ISS (ZARYA)", "number": 25544}]`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	records, err := client.SatelliteList(context.Background(), 1, ListOptions{})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	waits := recorder.Waits()
	if len(waits) != len(want) {
		t.Fatalf("got %d retry waits %v, want %v", len(waits), waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("retry wait %d = %s, want %s", i+1, waits[i], want[i])
		}
	}

	// every attempt counts, retries included
	if stats := client.RequestStats(); stats.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", stats.TotalRequests)
	}
}

func TestClient_RateLimitExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	_, err := client.SatelliteList(context.Background(), 1, ListOptions{})

	var exhausted *RateLimitExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("got %v, want RateLimitExhaustedError", err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", exhausted.Attempts)
	}
	if exhausted.Waited != 6*time.Second {
		t.Errorf("Waited = %s, want 6s", exhausted.Waited)
	}
	if !Is(err, ErrCodeRateLimitExhausted) {
		t.Errorf("error code = %q, want RATE_LIMIT_EXHAUSTED", GetCode(err))
	}
	if stats := client.RequestStats(); stats.TotalRequests != 4 {
		t.Errorf("TotalRequests = %d, want 4", stats.TotalRequests)
	}
}

func TestClient_TierGated404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	_, err := client.SatelliteOrbit(context.Background(), "25544", 90)

	var unavailable *EndpointUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("got %v, want EndpointUnavailableError", err)
	}
	if unavailable.Endpoint != "/satellite/25544/orbit" {
		t.Errorf("Endpoint = %q", unavailable.Endpoint)
	}
}

func TestClient_UngatedErrorsNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"bad gateway", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client, _ := newTestClient(t, srv.URL)
			_, err := client.SatelliteList(context.Background(), 1, ListOptions{})

			var upstream *UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("got %v, want UpstreamError", err)
			}
			if upstream.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", upstream.StatusCode, tt.status)
			}
			if calls != 1 {
				t.Errorf("server saw %d calls, want 1 (no retries)", calls)
			}
		})
	}
}

func TestClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	_, err := client.SatelliteList(context.Background(), 1, ListOptions{})
	if !Is(err, ErrCodeConfig) {
		t.Errorf("got %v, want CONFIG_ERROR", err)
	}
}

func TestClient_GatedInputValidation(t *testing.T) {
	client, _ := newTestClient(t, "http://unreachable.invalid")

	if _, err := client.SatelliteOrbit(context.Background(), "", 90); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("empty NORAD ID: got %v, want INVALID_INPUT", err)
	}
	if _, err := client.SatelliteOrbit(context.Background(), "25544", 0); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("zero period: got %v, want INVALID_INPUT", err)
	}
	if _, err := client.SatelliteDetails(context.Background(), ""); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("details empty NORAD ID: got %v, want INVALID_INPUT", err)
	}
	if _, err := client.SatelliteLocation(context.Background(), ""); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("location empty NORAD ID: got %v, want INVALID_INPUT", err)
	}
	if stats := client.RequestStats(); stats.TotalRequests != 0 {
		t.Errorf("TotalRequests = %d, want 0", stats.TotalRequests)
	}
}

func TestClient_RequestStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, clk := newTestClient(t, srv.URL)

	stats := client.RequestStats()
	if stats.TotalRequests != 0 || !stats.CanRequestNow {
		t.Errorf("fresh client stats = %+v", stats)
	}
	if stats.RateLimit != 1 {
		t.Errorf("RateLimit = %g, want 1", stats.RateLimit)
	}

	if _, err := client.SatelliteList(context.Background(), 1, ListOptions{}); err != nil {
		t.Fatal(err)
	}

	stats = client.RequestStats()
	if stats.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1", stats.TotalRequests)
	}
	if stats.LastRequestAt.IsZero() {
		t.Error("LastRequestAt not recorded")
	}
	if stats.CanRequestNow {
		t.Errorf("CanRequestNow = true right after a request; TimeUntilNext = %s", stats.TimeUntilNext)
	}

	clk.Advance(time.Second)
	stats = client.RequestStats()
	if !stats.CanRequestNow || stats.TimeUntilNext != 0 {
		t.Errorf("after interval elapsed: CanRequestNow = %v, TimeUntilNext = %s", stats.CanRequestNow, stats.TimeUntilNext)
	}
}

func TestClient_SetRateLimit(t *testing.T) {
	client, _ := newTestClient(t, "http://unreachable.invalid")

	if err := client.SetRateLimit(2.5); err != nil {
		t.Fatalf("SetRateLimit(2.5): %v", err)
	}
	if got := client.RequestStats().RateLimit; got != 2.5 {
		t.Errorf("RateLimit = %g, want 2.5", got)
	}
	if err := client.SetRateLimit(0); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("SetRateLimit(0): got %v, want INVALID_INPUT", err)
	}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{APIHost: DefaultAPIHost, RequestsPerSecond: 1})
	if !Is(err, ErrCodeConfig) {
		t.Errorf("missing key: got %v, want CONFIG_ERROR", err)
	}

	_, err = NewClient(Config{APIKey: "k", APIHost: DefaultAPIHost, RequestsPerSecond: 0})
	if !Is(err, ErrCodeConfig) {
		t.Errorf("zero rate: got %v, want CONFIG_ERROR", err)
	}

	client, err := NewClient(Config{APIKey: "k", APIHost: DefaultAPIHost, RequestsPerSecond: 2})
	if err != nil {
		t.Fatalf("valid config: %v", err)
	}
	if client.baseURL != "https://"+DefaultAPIHost {
		t.Errorf("baseURL = %q", client.baseURL)
	}
}
