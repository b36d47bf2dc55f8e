package models

import "time"

// RawEntry holds one diary row exactly as a source produced it. Export files,
// the persisted dataset and the RSS feed all yield this shape before any
// type coercion happens.
type RawEntry struct {
	WatchedDate string
	Title       string
	Year        string
	Rating      string
	Rewatch     string
}

// Record is one watched-film event in canonical form.
// A zero WatchedDate means the date could not be parsed.
type Record struct {
	WatchedDate  time.Time
	Title        string
	ReleasedYear *int
	Rating       *float64
	IsRewatch    bool
}

// HasDate reports whether the record carries a parsable watched date.
func (r *Record) HasDate() bool {
	return !r.WatchedDate.IsZero()
}

// DedupKey identifies a unique watch event. It is derived, never stored.
type DedupKey struct {
	Title string
	Date  string
}

// DiaryReport holds the computed statistics over the merged dataset.
type DiaryReport struct {
	TotalEntries  int
	Rewatches     int
	RatedEntries  int
	AverageRating float64
	TopRated      []*Record
	EntriesByYear map[int]int
}
