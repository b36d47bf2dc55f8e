package letterboxd

import (
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"

	"letterboxd-sync/models"
)

// namespace prefix of the Letterboxd RSS extension elements
const namespace = "letterboxd"

// ParseFeed decodes an RSS document into raw diary entries. Items that are
// not diary entries (lists, reviews without a watch date) are still
// returned; the normalizer drops them.
func ParseFeed(r io.Reader) ([]*models.RawEntry, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("letterboxd: parse feed: %w", err)
	}

	entries := make([]*models.RawEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, toRawEntry(item))
	}
	return entries, nil
}

func toRawEntry(item *gofeed.Item) *models.RawEntry {
	title := extValue(item, "filmTitle")
	if title == "" {
		title = item.Title
	}
	return &models.RawEntry{
		WatchedDate: extValue(item, "watchedDate"),
		Title:       title,
		Year:        extValue(item, "filmYear"),
		Rating:      extValue(item, "memberRating"),
		Rewatch:     extValue(item, "rewatch"),
	}
}

func extValue(item *gofeed.Item, name string) string {
	if item.Extensions == nil {
		return ""
	}
	values := item.Extensions[namespace][name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}
