package storage

import "letterboxd-sync/models"

// DatasetWriter is the interface any storage backend must satisfy. Write
// replaces the stored dataset wholesale.
type DatasetWriter interface {
	Write(records []*models.Record) error
	Close() error
}

// TableReader returns header-keyed rows from a tabular source.
type TableReader interface {
	ReadTable(path string) ([]map[string]string, error)
}
