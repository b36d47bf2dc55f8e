package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"letterboxd-sync/models"
	"letterboxd-sync/utils"
)

var (
	// yearSuffixRegexp matches a trailing " (2003)" with an optional star or
	// numeric rating after it, e.g. " (2003) ★★½" or " (2003) ★3.5".
	yearSuffixRegexp = regexp.MustCompile(`\s+\(\d{4}\)(?:\s*[★☆½]*\s*\d*(?:\.\d+)?)?\s*$`)

	// dateLayouts are tried in order. Anything carrying a time of day is
	// truncated to its wall-clock calendar day.
	dateLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
	}
)

// affirmative rewatch markers: the export writes "Yes", the dataset file
// writes the boolean literal "True".
var rewatchMarkers = []string{"yes", "true"}

// CanonicalTitle returns the identity form of a film title: lowercased,
// trimmed, with any trailing year/rating annotation removed.
func CanonicalTitle(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = yearSuffixRegexp.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CanonicalDate parses raw into a calendar day at UTC midnight. The second
// return value is false for missing or unparsable input.
func CanonicalDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Key returns the dedup key of a record. Records without a date share the
// empty date component.
func Key(r *models.Record) models.DedupKey {
	k := models.DedupKey{Title: CanonicalTitle(r.Title)}
	if r.HasDate() {
		k.Date = r.WatchedDate.Format("2006-01-02")
	}
	return k
}

// Normalizer coerces RawEntries into typed Records.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Coerce converts one raw entry. Malformed fields become nil (or false for
// rewatch); the record itself is always returned.
func (n *Normalizer) Coerce(raw *models.RawEntry) *models.Record {
	r := &models.Record{
		Title:        raw.Title,
		ReleasedYear: parseYear(raw.Year),
		Rating:       parseRating(raw.Rating),
		IsRewatch:    parseRewatch(raw.Rewatch),
	}
	if d, ok := CanonicalDate(raw.WatchedDate); ok {
		r.WatchedDate = d
	}
	return r
}

// CoerceAll converts existing dataset rows, keeping every row.
func (n *Normalizer) CoerceAll(raw []*models.RawEntry) []*models.Record {
	out := make([]*models.Record, 0, len(raw))
	undated := 0
	for _, e := range raw {
		r := n.Coerce(e)
		if !r.HasDate() {
			undated++
		}
		out = append(out, r)
	}
	if undated > 0 {
		n.logger.Warn("[normalizer] %d existing rows have no parsable watched date", undated)
	}
	return out
}

// Candidates converts feed entries and silently drops those that lack a
// title or a parsable watched date.
func (n *Normalizer) Candidates(raw []*models.RawEntry) []*models.Record {
	out := make([]*models.Record, 0, len(raw))
	for _, e := range raw {
		r := n.Coerce(e)
		if strings.TrimSpace(r.Title) == "" || !r.HasDate() {
			n.logger.Debug("[normalizer] Skipping feed entry title=%q date=%q", e.Title, e.WatchedDate)
			continue
		}
		out = append(out, r)
	}
	n.logger.Debug("[normalizer] %d of %d feed entries are valid candidates", len(out), len(raw))
	return out
}

func parseYear(raw string) *int {
	f := parseNumber(raw)
	if f == nil || *f != math.Trunc(*f) {
		return nil
	}
	y := int(*f)
	return &y
}

func parseRating(raw string) *float64 {
	return parseNumber(raw)
}

func parseNumber(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseRewatch(raw string) bool {
	raw = strings.TrimSpace(raw)
	for _, m := range rewatchMarkers {
		if strings.EqualFold(raw, m) {
			return true
		}
	}
	return false
}
