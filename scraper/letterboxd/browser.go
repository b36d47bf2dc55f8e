package letterboxd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"letterboxd-sync/config"
	"letterboxd-sync/models"
	"letterboxd-sync/utils"
)

// fetchScript re-requests the current page from inside the browser so the
// raw XML comes back instead of Chrome's rendered tree view.
const fetchScript = `fetch(location.href, {credentials: 'include'}).then(function(r) {
	if (!r.ok) { throw new Error('HTTP ' + r.status); }
	return r.text();
})`

// BrowserFetcher loads the feed through headless Chrome, for networks where
// the feed host rejects plain HTTP clients.
type BrowserFetcher struct {
	url       string
	chromeBin string
	timeout   time.Duration
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// NewBrowserFetcher creates a BrowserFetcher from cfg.
func NewBrowserFetcher(cfg *config.Config, logger *utils.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		url:       cfg.FeedURL,
		chromeBin: cfg.ChromeBin,
		timeout:   time.Duration(cfg.FeedTimeoutSec) * time.Second,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.FeedMaxAttempts,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Fetch loads and parses the feed.
func (b *BrowserFetcher) Fetch(ctx context.Context) ([]*models.RawEntry, error) {
	chromeBin := b.chromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	b.logger.Info("[letterboxd] Fetching feed %s via browser %s", b.url, chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var body string
	err := b.retry.Do(ctx, "fetch feed via browser", func() error {
		tabCtx, cancelTab := chromedp.NewContext(browserCtx)
		defer cancelTab()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeout)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(b.url),
			chromedp.Evaluate(fetchScript, &body, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithAwaitPromise(true)
			}),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("letterboxd: browser fetch: %w", err)
	}

	return ParseFeed(strings.NewReader(body))
}

func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
