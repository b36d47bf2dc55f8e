package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"letterboxd-sync/models"
)

// DatasetHeader is the exact column set of the persisted dataset file.
var DatasetHeader = []string{"Watched Date", "Film", "Released", "My Rating", "Rewatch"}

const dateLayout = "2006-01-02"

// CSVWriter persists the dataset as a CSV file, replacing it on every Write.
type CSVWriter struct {
	path string
}

// NewCSVWriter returns a writer targeting path. Intermediate directories are
// created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// Write renders every record into a temp file next to the target and renames
// it over the target, so readers never observe a half-written dataset.
func (c *CSVWriter) Write(records []*models.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(DatasetHeader); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(FormatRow(r)); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	if err := tmp.Chmod(targetMode(c.path)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("csv: replace %q: %w", c.path, err)
	}
	return nil
}

// targetMode keeps the permissions of an existing dataset file, or 0644 for
// a new one.
func targetMode(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil {
		return fi.Mode().Perm()
	}
	return 0644
}

// Close is a no-op; each Write owns its file handle.
func (c *CSVWriter) Close() error {
	return nil
}

// FormatRow renders a record in DatasetHeader column order.
func FormatRow(r *models.Record) []string {
	date := ""
	if r.HasDate() {
		date = r.WatchedDate.Format(dateLayout)
	}
	year := ""
	if r.ReleasedYear != nil {
		year = strconv.Itoa(*r.ReleasedYear)
	}
	rating := ""
	if r.Rating != nil {
		rating = strconv.FormatFloat(*r.Rating, 'f', -1, 64)
	}
	rewatch := "False"
	if r.IsRewatch {
		rewatch = "True"
	}
	return []string{date, r.Title, year, rating, rewatch}
}
