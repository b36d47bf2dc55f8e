package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"letterboxd-sync/models"
	"letterboxd-sync/utils"
)

// PostgresWriter mirrors the merged dataset into PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS diary_entries (
			id            SERIAL PRIMARY KEY,
			watched_date  DATE,
			title         TEXT         NOT NULL,
			released_year INTEGER,
			rating        REAL,
			is_rewatch    BOOLEAN      NOT NULL DEFAULT FALSE,
			synced_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			UNIQUE (title, watched_date)
		);

		CREATE INDEX IF NOT EXISTS idx_diary_entries_watched_date ON diary_entries(watched_date);
	`)
	return err
}

// Write replaces every mirrored row with records inside one transaction.
func (pw *PostgresWriter) Write(records []*models.Record) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec("DELETE FROM diary_entries"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := insertBatch(tx, records[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(tx *sql.Tx, batch []*models.Record) error {
	const cols = 5
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, nullDate(r), r.Title, nullInt(r.ReleasedYear), nullFloat(r.Rating), r.IsRewatch)
	}

	query := fmt.Sprintf(`
		INSERT INTO diary_entries (watched_date, title, released_year, rating, is_rewatch)
		VALUES %s
		ON CONFLICT (title, watched_date) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all mirrored entries ordered by watched date.
func (pw *PostgresWriter) FetchAll() ([]*models.Record, error) {
	rows, err := pw.db.Query(`
		SELECT watched_date, title, released_year, rating, is_rewatch
		FROM diary_entries
		ORDER BY watched_date NULLS LAST, id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		var (
			date   sql.NullTime
			year   sql.NullInt64
			rating sql.NullFloat64
		)
		r := &models.Record{}
		if err := rows.Scan(&date, &r.Title, &year, &rating, &r.IsRewatch); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if date.Valid {
			t := date.Time
			r.WatchedDate = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		if year.Valid {
			y := int(year.Int64)
			r.ReleasedYear = &y
		}
		if rating.Valid {
			v := rating.Float64
			r.Rating = &v
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func nullDate(r *models.Record) interface{} {
	if !r.HasDate() {
		return nil
	}
	return r.WatchedDate.Format(dateLayout)
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
