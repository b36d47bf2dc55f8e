package letterboxd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"letterboxd-sync/config"
	"letterboxd-sync/models"
	"letterboxd-sync/services"
	"letterboxd-sync/utils"
)

const (
	maxFeedBytes = 5 << 20 // 5MB
	userAgent    = "letterboxd-sync/1.0"
)

// New returns the fetcher selected by cfg.FetchMode.
func New(cfg *config.Config, logger *utils.Logger) (services.Fetcher, error) {
	switch cfg.FetchMode {
	case config.FetchModeHTTP, "":
		return NewFeedFetcher(cfg, logger), nil
	case config.FetchModeBrowser:
		return NewBrowserFetcher(cfg, logger), nil
	default:
		return nil, fmt.Errorf("letterboxd: unknown fetch mode %q", cfg.FetchMode)
	}
}

// FeedFetcher downloads the RSS feed with a plain HTTP client.
type FeedFetcher struct {
	url    string
	client *http.Client
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// NewFeedFetcher creates a FeedFetcher from cfg.
func NewFeedFetcher(cfg *config.Config, logger *utils.Logger) *FeedFetcher {
	return &FeedFetcher{
		url:    cfg.FeedURL,
		client: &http.Client{Timeout: time.Duration(cfg.FeedTimeoutSec) * time.Second},
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.FeedMaxAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Fetch downloads and parses the feed.
func (f *FeedFetcher) Fetch(ctx context.Context) ([]*models.RawEntry, error) {
	f.logger.Info("[letterboxd] Fetching feed %s", f.url)

	var entries []*models.RawEntry
	err := f.retry.Do(ctx, "fetch feed", func() error {
		var err error
		entries, err = f.fetchOnce(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *FeedFetcher) fetchOnce(ctx context.Context) ([]*models.RawEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("letterboxd: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("letterboxd: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("letterboxd: unexpected status %d", resp.StatusCode)
	}

	return ParseFeed(io.LimitReader(resp.Body, maxFeedBytes))
}
