// Package rates fetches the day's USD rate from the market feed. It is a
// plain GET with retry; the order flow only uses it for display.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Some upstream firewalls reject non-browser agents.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

// Rate is one currency entry from the feed.
type Rate struct {
	Symbol string
	Name   string
	Price  float64
	Unit   string
	Date   string
	Time   string
}

// Client fetches rates. Zero-value fields fall back to sane defaults, so
// tests can tighten Backoff without a constructor variant.
type Client struct {
	URL        string
	HTTPClient *http.Client
	Retries    int
	Backoff    time.Duration
}

func NewClient(url string) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Retries:    3,
		Backoff:    time.Second,
	}
}

type feedEntry struct {
	Symbol string      `json:"symbol"`
	Name   string      `json:"name"`
	NameEn string      `json:"name_en"`
	Price  json.Number `json:"price"`
	Unit   string      `json:"unit"`
	Date   string      `json:"date"`
	Time   string      `json:"time"`
}

type feed struct {
	Currency []feedEntry `json:"currency"`
}

// USD fetches the feed and picks the USD entry, retrying transient failures
// (network errors, 429, 5xx) with linear backoff. Other statuses fail fast.
func (c *Client) USD(ctx context.Context) (Rate, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Rate{}, ctx.Err()
			case <-time.After(c.backoff() * time.Duration(attempt)):
			}
		}

		rate, retryable, err := c.fetch(ctx)
		if err == nil {
			return rate, nil
		}
		if !retryable {
			return Rate{}, err
		}
		lastErr = err
	}
	return Rate{}, fmt.Errorf("rate fetch gave up after %d attempts: %w", c.Retries+1, lastErr)
}

func (c *Client) fetch(ctx context.Context) (Rate, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Rate{}, false, err
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Rate{}, true, fmt.Errorf("rate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Rate{}, true, fmt.Errorf("rate feed status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Rate{}, false, fmt.Errorf("rate feed status %d", resp.StatusCode)
	}

	var f feed
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return Rate{}, false, fmt.Errorf("rate feed body: %w", err)
	}

	entry, ok := pickUSD(f.Currency)
	if !ok {
		return Rate{}, false, fmt.Errorf("usd not present in rate feed (%d currencies)", len(f.Currency))
	}
	price, err := entry.Price.Float64()
	if err != nil {
		return Rate{}, false, fmt.Errorf("usd price %q: %w", entry.Price, err)
	}
	return Rate{
		Symbol: entry.Symbol,
		Name:   entry.Name,
		Price:  price,
		Unit:   entry.Unit,
		Date:   entry.Date,
		Time:   entry.Time,
	}, false, nil
}

// pickUSD prefers an exact symbol match and falls back to the english name,
// mirroring how the feed is actually keyed.
func pickUSD(entries []feedEntry) (feedEntry, bool) {
	for _, e := range entries {
		if e.Symbol == "USD" {
			return e, true
		}
	}
	for _, e := range entries {
		if strings.HasPrefix(strings.ToLower(e.NameEn), "us") {
			return e, true
		}
	}
	return feedEntry{}, false
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) backoff() time.Duration {
	if c.Backoff > 0 {
		return c.Backoff
	}
	return time.Second
}
