package services

import (
	"errors"
	"fmt"
	"io/fs"

	"letterboxd-sync/models"
	"letterboxd-sync/storage"
	"letterboxd-sync/utils"
)

// ColumnMap names the source columns that feed each RawEntry field.
// Fallbacks are consulted, in order, when the primary column is empty.
type ColumnMap struct {
	WatchedDate []string
	Title       string
	Year        string
	Rating      string
	Rewatch     string
}

// ExportColumns maps the bulk diary export. The permalink column
// ("Letterboxd URI") is ignored.
var ExportColumns = ColumnMap{
	WatchedDate: []string{"Watched Date", "Date"},
	Title:       "Name",
	Year:        "Year",
	Rating:      "Rating",
	Rewatch:     "Rewatch",
}

// DatasetColumns maps the persisted dataset file.
var DatasetColumns = ColumnMap{
	WatchedDate: []string{"Watched Date"},
	Title:       "Film",
	Year:        "Released",
	Rating:      "My Rating",
	Rewatch:     "Rewatch",
}

func (m ColumnMap) entry(row map[string]string) *models.RawEntry {
	e := &models.RawEntry{
		Title:   row[m.Title],
		Year:    row[m.Year],
		Rating:  row[m.Rating],
		Rewatch: row[m.Rewatch],
	}
	for _, col := range m.WatchedDate {
		if v := row[col]; v != "" {
			e.WatchedDate = v
			break
		}
	}
	return e
}

// Loader reads the dataset that the merge builds on.
type Loader struct {
	reader        storage.TableReader
	normalizer    *Normalizer
	logger        *utils.Logger
	datasetPath   string
	bootstrapPath string
}

// NewLoader creates a Loader. An empty bootstrapPath disables bootstrapping.
func NewLoader(reader storage.TableReader, normalizer *Normalizer, logger *utils.Logger,
	datasetPath, bootstrapPath string) *Loader {
	return &Loader{
		reader:        reader,
		normalizer:    normalizer,
		logger:        logger,
		datasetPath:   datasetPath,
		bootstrapPath: bootstrapPath,
	}
}

// Load returns the persisted dataset when it exists. Otherwise it bootstraps
// from the export file if one is configured, or returns an empty dataset.
// bootstrapped reports whether the export was used.
func (l *Loader) Load() (records []*models.Record, bootstrapped bool, err error) {
	rows, err := l.reader.ReadTable(l.datasetPath)
	switch {
	case err == nil:
		l.logger.Info("[loader] Loaded %d rows from %s", len(rows), l.datasetPath)
		return l.normalizer.CoerceAll(mapRows(rows, DatasetColumns)), false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, false, fmt.Errorf("loader: read dataset: %w", err)
	}

	if l.bootstrapPath == "" {
		l.logger.Info("[loader] No dataset at %s, starting empty", l.datasetPath)
		return nil, false, nil
	}

	rows, err = l.reader.ReadTable(l.bootstrapPath)
	if err != nil {
		return nil, false, fmt.Errorf("loader: read bootstrap export: %w", err)
	}
	l.logger.Info("[loader] Bootstrapped %d rows from export %s", len(rows), l.bootstrapPath)
	return l.normalizer.CoerceAll(mapRows(rows, ExportColumns)), true, nil
}

func mapRows(rows []map[string]string, m ColumnMap) []*models.RawEntry {
	out := make([]*models.RawEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.entry(row))
	}
	return out
}
