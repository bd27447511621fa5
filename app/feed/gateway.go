package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const cacheKey = "rss_cache"

// GatewayOptions bound the retrieval behavior of a single Run call
type GatewayOptions struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	CacheTTL   time.Duration
	UserAgent  string
}

// Gateway retrieves the news feed with ordered failover across source
// endpoints, bounded retries per source and a short-TTL cache. Retries and
// failover are strictly sequential; no source is raced against another.
type Gateway struct {
	endpoints  []string
	parser     *Parser
	store      cacheStore
	httpClient *http.Client
	opts       GatewayOptions
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func NewGateway(endpoints []string, parser *Parser, store cacheStore, httpClient *http.Client, opts GatewayOptions) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Gateway{
		endpoints:  endpoints,
		parser:     parser,
		store:      store,
		httpClient: httpClient,
		opts:       opts,
	}
}

// Run returns the current feed items, from cache when fresh. Each endpoint
// is attempted up to MaxRetries+1 times; the first endpoint whose response
// looks like a feed document and parses to at least one item wins and is
// cached. When every endpoint is exhausted the last observed error is
// returned wrapped in ErrFetchFailed.
func (g *Gateway) Run(ctx context.Context) ([]Item, error) {
	if cached, ok := g.getCached(ctx); ok {
		slog.Debug("Feed served from cache", "items", len(cached))
		return cached, nil
	}

	var lastErr error

	for _, endpoint := range g.endpoints {
		items, err := g.fetchEndpoint(ctx, endpoint)
		if err != nil {
			slog.Warn("Feed source failed", "endpoint", endpoint, "error", err)
			lastErr = err
			continue
		}

		g.setCached(ctx, items)
		return items, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no sources configured")
	}

	return nil, fmt.Errorf("%w: %w", ErrFetchFailed, lastErr)
}

func (g *Gateway) fetchEndpoint(ctx context.Context, endpoint string) ([]Item, error) {
	var lastErr error

	for attempt := 0; attempt <= g.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(g.opts.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := g.fetchOnce(ctx, endpoint)
		if err != nil {
			lastErr = err
			continue
		}

		body := string(data)
		if !strings.Contains(body, "<?xml") && !strings.Contains(body, "<rss") {
			lastErr = fmt.Errorf("%w: response is not a feed document", ErrInvalidFormat)
			continue
		}

		items, err := g.parser.Run(data)
		if err != nil {
			lastErr = err
			continue
		}
		if len(items) == 0 {
			lastErr = fmt.Errorf("%w: no valid items in feed", ErrInvalidFormat)
			continue
		}

		return items, nil
	}

	return nil, lastErr
}

// fetchOnce issues a single request bounded by the configured timeout. The
// in-flight request is actively cancelled when the budget is exceeded so its
// connection is released before the next attempt.
func (g *Gateway) fetchOnce(ctx context.Context, endpoint string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")
	if g.opts.UserAgent != "" {
		req.Header.Set("User-Agent", g.opts.UserAgent)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, g.opts.Timeout)
		}
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (g *Gateway) getCached(ctx context.Context) ([]Item, bool) {
	if g.store == nil {
		return nil, false
	}

	raw, ok, err := g.store.Get(ctx, cacheKey)
	if err != nil || !ok {
		if err != nil {
			slog.Warn("Cache read failed", "error", err)
		}
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// Torn or malformed entry is a miss, never corruption
		g.store.Delete(ctx, cacheKey)
		return nil, false
	}

	if time.Since(time.UnixMilli(entry.Timestamp)) > g.opts.CacheTTL {
		g.store.Delete(ctx, cacheKey)
		return nil, false
	}

	return entry.Data, true
}

// setCached writes the feed to cache on success only; write failures are
// logged and swallowed.
func (g *Gateway) setCached(ctx context.Context, items []Item) {
	if g.store == nil {
		return
	}

	entry := CacheEntry{
		Timestamp: time.Now().UnixMilli(),
		Data:      items,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("Failed to serialize cache entry", "error", err)
		return
	}

	if err := g.store.Set(ctx, cacheKey, string(data), g.opts.CacheTTL); err != nil {
		slog.Warn("Failed to cache feed data", "error", err)
	}
}
