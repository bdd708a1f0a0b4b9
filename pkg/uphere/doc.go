// Package uphere implements a rate-limited HTTP client for the UpHere Space
// satellite-tracking API (reached through RapidAPI).
//
// The free tier of the upstream API allows one request per second, so every
// call funnels through a [RateLimiter] that enforces a minimum interval
// between outbound attempts. HTTP 429 responses trigger a bounded retry
// schedule with growing backoff waits; any other non-2xx status is surfaced
// immediately as a distinct error kind (see errors.go).
//
// # Usage
//
//	cfg, err := uphere.LoadConfig()
//	if err != nil {
//	    return err
//	}
//	client, err := uphere.NewClient(cfg)
//	if err != nil {
//	    return err
//	}
//	records, err := client.SatelliteList(ctx, 1, uphere.ListOptions{Country: "US"})
//
// The client is safe for concurrent use; the limiter serializes callers so
// at most one request is in flight against the upstream at a time.
//
// Higher-level lookups (name search, NORAD ID resolution, caching) live in
// the satellites package, which layers a read-through cache on top of this
// client.
package uphere
