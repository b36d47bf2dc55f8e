package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letterboxd-sync/models"
)

func TestMergePastLivesScenario(t *testing.T) {
	m := NewMerger(newTestLogger())
	existing := []*models.Record{rec(day(2023, 5, 1), "Past Lives")}
	candidates := []*models.Record{
		rec(day(2023, 5, 1), "past lives (2023) ★4.5"),
		rec(day(2023, 5, 3), "Aftersun"),
	}

	res := m.Merge(existing, candidates)
	assert.Equal(t, 1, res.Added)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Past Lives", res.Records[0].Title, "existing row is kept untouched")
	assert.Equal(t, "Aftersun", res.Records[1].Title)
	assert.Equal(t, "Added 1 new entries. Total: 2", res.Summary())
}

func TestMergeIsIdempotent(t *testing.T) {
	m := NewMerger(newTestLogger())
	existing := []*models.Record{rec(day(2023, 5, 1), "Past Lives")}
	candidates := []*models.Record{
		rec(day(2023, 5, 3), "Aftersun"),
		rec(day(2023, 4, 20), "The Room (2003) ★3.5"),
	}

	once := m.Merge(existing, candidates)
	twice := m.Merge(once.Records, candidates)

	assert.Equal(t, 2, once.Added)
	assert.Equal(t, 0, twice.Added)
	assert.Equal(t, once.Records, twice.Records)
	assert.Equal(t, "No new entries found.", twice.Summary())
}

func TestMergeZeroCandidatesKeepsRows(t *testing.T) {
	m := NewMerger(newTestLogger())
	existing := []*models.Record{
		rec(day(2023, 5, 1), "Past Lives"),
		rec(day(2023, 5, 3), "Aftersun"),
	}

	res := m.Merge(existing, nil)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, existing, res.Records)
}

func TestMergeDropsInRunDuplicates(t *testing.T) {
	m := NewMerger(newTestLogger())
	candidates := []*models.Record{
		rec(day(2023, 5, 3), "Aftersun"),
		rec(day(2023, 5, 3), "Aftersun (2022)"),
		rec(day(2023, 5, 4), "Aftersun"),
	}

	res := m.Merge(nil, candidates)
	assert.Equal(t, 2, res.Added)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Aftersun", res.Records[0].Title, "first candidate wins")
}

func TestMergeSortsAscendingWithUndatedLast(t *testing.T) {
	m := NewMerger(newTestLogger())
	existing := []*models.Record{
		rec(day(2023, 6, 1), "June"),
		{Title: "No date"},
		rec(day(2023, 1, 1), "January"),
	}
	candidates := []*models.Record{rec(day(2023, 3, 1), "March")}

	res := m.Merge(existing, candidates)
	require.Len(t, res.Records, 4)
	titles := make([]string, 0, len(res.Records))
	for _, r := range res.Records {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"January", "March", "June", "No date"}, titles)

	for i := 1; i < len(res.Records); i++ {
		a, b := res.Records[i-1], res.Records[i]
		if a.HasDate() && b.HasDate() {
			assert.False(t, b.WatchedDate.Before(a.WatchedDate), "rows %d and %d out of order", i-1, i)
		}
	}
}

func TestMergeSafetyNetDropsRawRepeats(t *testing.T) {
	m := NewMerger(newTestLogger())
	first := &models.Record{WatchedDate: day(2023, 5, 1), Title: "Past Lives", Rating: floatPtr(4)}
	existing := []*models.Record{
		first,
		{WatchedDate: day(2023, 5, 1), Title: "Past Lives", Rating: floatPtr(5)},
		{WatchedDate: day(2023, 5, 1), Title: "PAST LIVES"},
	}

	res := m.Merge(existing, nil)
	require.Len(t, res.Records, 2, "only exact raw repeats are removed")
	assert.Same(t, first, res.Records[0])
	assert.Equal(t, "PAST LIVES", res.Records[1].Title)
	assert.Equal(t, 0, res.Added)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	m := NewMerger(newTestLogger())
	existing := []*models.Record{rec(day(2023, 6, 1), "June"), rec(day(2023, 1, 1), "January")}

	m.Merge(existing, []*models.Record{rec(day(2023, 3, 1), "March")})
	assert.Equal(t, "June", existing[0].Title)
	assert.Equal(t, "January", existing[1].Title)
}

func TestMergeExcludesEveryMatchingCandidate(t *testing.T) {
	m := NewMerger(newTestLogger())
	existing := []*models.Record{
		rec(day(2023, 5, 1), "Past Lives"),
		rec(day(2023, 4, 20), "The Room"),
	}
	candidates := []*models.Record{
		rec(day(2023, 5, 1), "  PAST LIVES "),
		rec(day(2023, 4, 20), "The Room (2003) ★3.5"),
	}

	res := m.Merge(existing, candidates)
	assert.Equal(t, 0, res.Added)
	assert.Len(t, res.Records, 2)
	for _, c := range candidates {
		for _, r := range res.Records {
			assert.NotSame(t, c, r)
		}
	}
}
