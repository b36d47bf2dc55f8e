package letterboxd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letterboxd-sync/utils"
)

// Runs only where a Chrome or Chromium binary is installed.
func TestBrowserFetcherFetch(t *testing.T) {
	if findChromeBinary() == "" {
		t.Skip("no Chrome binary found")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.FeedURL = srv.URL + "/someone/rss/"
	cfg.FeedTimeoutSec = 30

	entries, err := NewBrowserFetcher(cfg, utils.NopLogger()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Past Lives", entries[0].Title)
	assert.Equal(t, "2023-05-01", entries[0].WatchedDate)
}
