package services

import (
	"fmt"
	"sort"

	"letterboxd-sync/models"
	"letterboxd-sync/utils"
)

// MergeResult is the merged dataset plus how many candidates made it in.
type MergeResult struct {
	Records []*models.Record
	Added   int
}

// Summary is the human-readable line reported at the end of a run.
func (m *MergeResult) Summary() string {
	if m.Added == 0 {
		return "No new entries found."
	}
	return fmt.Sprintf("Added %d new entries. Total: %d", m.Added, len(m.Records))
}

// Merger folds fetched candidates into an existing dataset.
type Merger struct {
	logger *utils.Logger
}

// NewMerger creates a Merger with the given logger.
func NewMerger(logger *utils.Logger) *Merger {
	return &Merger{logger: logger}
}

// Merge appends every candidate whose canonical key is neither in existing
// nor taken by an earlier candidate, sorts by watched date (undated rows
// last, ties keep input order) and finally drops repeated raw (title, date)
// pairs, keeping the first. Neither input slice is modified.
func (m *Merger) Merge(existing, candidates []*models.Record) *MergeResult {
	seen := utils.NewSet[models.DedupKey](len(existing) + len(candidates))
	for _, r := range existing {
		seen.Add(Key(r))
	}

	combined := make([]*models.Record, 0, len(existing)+len(candidates))
	combined = append(combined, existing...)

	added := 0
	for _, c := range candidates {
		if !seen.Add(Key(c)) {
			m.logger.Debug("[merger] Already recorded: %q on %s", c.Title, c.WatchedDate.Format("2006-01-02"))
			continue
		}
		combined = append(combined, c)
		added++
	}

	sortByWatchedDate(combined)
	out := dedupRaw(combined)

	// A candidate equal on raw title and date would already have matched on
	// its canonical key, so only pre-existing repeats can be dropped here.
	if dropped := len(combined) - len(out); dropped > 0 {
		m.logger.Warn("[merger] Safety net removed %d existing rows with repeated title and date", dropped)
	}

	m.logger.Info("[merger] %d existing + %d candidates → %d rows (%d new)",
		len(existing), len(candidates), len(out), added)
	return &MergeResult{Records: out, Added: added}
}

func sortByWatchedDate(records []*models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.HasDate() != b.HasDate() {
			return a.HasDate()
		}
		return a.WatchedDate.Before(b.WatchedDate)
	})
}

func dedupRaw(records []*models.Record) []*models.Record {
	seen := utils.NewSet[models.DedupKey](len(records))
	out := make([]*models.Record, 0, len(records))
	for _, r := range records {
		k := Key(r)
		k.Title = r.Title
		if !seen.Add(k) {
			continue
		}
		out = append(out, r)
	}
	return out
}
