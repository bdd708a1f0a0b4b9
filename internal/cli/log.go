package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// progress tracks the start time of an operation and logs completion with
// elapsed duration. Safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Fetched page 1 (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHTTPHooks forwards upstream API events to the CLI logger at debug
// level, so --verbose shows every attempt, retry wait, and response.
type logHTTPHooks struct {
	logger *log.Logger
}

func (h *logHTTPHooks) OnRequest(_ context.Context, requestID, method, host, path string) {
	h.logger.Debug("request", "id", requestID, "method", method, "host", host, "path", path)
}

func (h *logHTTPHooks) OnResponse(_ context.Context, requestID, _, _, path string, statusCode int, duration time.Duration) {
	h.logger.Debug("response", "id", requestID, "path", path, "status", statusCode,
		"duration", duration.Round(time.Millisecond))
}

func (h *logHTTPHooks) OnRetry(_ context.Context, requestID, path string, attempt int, wait time.Duration) {
	h.logger.Warn("rate limited, backing off", "id", requestID, "path", path,
		"retry", attempt, "wait", wait)
}

func (h *logHTTPHooks) OnError(_ context.Context, requestID, _, _, path string, err error) {
	h.logger.Debug("request error", "id", requestID, "path", path, "err", err)
}

// logCacheHooks reports cache traffic at debug level.
type logCacheHooks struct {
	logger *log.Logger
}

func (h *logCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache store", "type", keyType, "bytes", size)
}
