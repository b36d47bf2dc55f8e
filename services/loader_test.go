package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letterboxd-sync/storage"
)

const exportCSV = "Date,Name,Year,Letterboxd URI,Rating,Rewatch,Tags,Watched Date\n" +
	"2023-05-02,Past Lives,2023,https://boxd.it/a1,4.5,,,2023-05-01\n" +
	"2023-05-04,The Room,2003,https://boxd.it/a2,abc,Yes,,2023-05-03\n" +
	"2023-05-06,Aftersun,2022,https://boxd.it/a3,5,No,,\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoaderBootstrapsFromExport(t *testing.T) {
	dir := t.TempDir()
	export := writeFile(t, dir, "diary.csv", exportCSV)

	l := NewLoader(storage.CSVReader{}, NewNormalizer(newTestLogger()), newTestLogger(),
		filepath.Join(dir, "letterboxd.csv"), export)
	records, bootstrapped, err := l.Load()
	require.NoError(t, err)
	assert.True(t, bootstrapped)
	require.Len(t, records, 3)

	assert.Equal(t, "Past Lives", records[0].Title)
	assert.True(t, records[0].WatchedDate.Equal(day(2023, 5, 1)), "Watched Date wins over Date")
	assert.Equal(t, intPtr(2023), records[0].ReleasedYear)
	assert.False(t, records[0].IsRewatch, "empty rewatch is false")

	assert.True(t, records[1].IsRewatch)
	assert.Nil(t, records[1].Rating, "invalid rating becomes nil")

	assert.True(t, records[2].WatchedDate.Equal(day(2023, 5, 6)), "falls back to Date")
	assert.False(t, records[2].IsRewatch)
}

func TestLoaderPrefersPersistedDataset(t *testing.T) {
	dir := t.TempDir()
	export := writeFile(t, dir, "diary.csv", exportCSV)
	dataset := writeFile(t, dir, "letterboxd.csv",
		"Watched Date,Film,Released,My Rating,Rewatch\n2023-05-01,Past Lives,2023.0,4.5,True\n")

	l := NewLoader(storage.CSVReader{}, NewNormalizer(newTestLogger()), newTestLogger(), dataset, export)
	records, bootstrapped, err := l.Load()
	require.NoError(t, err)
	assert.False(t, bootstrapped)
	require.Len(t, records, 1)
	assert.Equal(t, intPtr(2023), records[0].ReleasedYear)
	assert.Equal(t, floatPtr(4.5), records[0].Rating)
	assert.True(t, records[0].IsRewatch, "boolean literal round-trips")
}

func TestLoaderEmptyWhenNothingExists(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(storage.CSVReader{}, NewNormalizer(newTestLogger()), newTestLogger(),
		filepath.Join(dir, "letterboxd.csv"), "")
	records, bootstrapped, err := l.Load()
	require.NoError(t, err)
	assert.False(t, bootstrapped)
	assert.Empty(t, records)
}

func TestLoaderMissingConfiguredExportIsFatal(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(storage.CSVReader{}, NewNormalizer(newTestLogger()), newTestLogger(),
		filepath.Join(dir, "letterboxd.csv"), filepath.Join(dir, "missing.csv"))
	_, _, err := l.Load()
	assert.Error(t, err)
}

type failingReader struct{ err error }

func (f failingReader) ReadTable(string) ([]map[string]string, error) { return nil, f.err }

func TestLoaderPropagatesReadErrors(t *testing.T) {
	boom := errors.New("permission denied")
	l := NewLoader(failingReader{err: boom}, NewNormalizer(newTestLogger()), newTestLogger(), "x.csv", "")
	_, _, err := l.Load()
	assert.ErrorIs(t, err, boom)
}
