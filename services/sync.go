package services

import (
	"context"
	"fmt"

	"letterboxd-sync/models"
	"letterboxd-sync/storage"
	"letterboxd-sync/utils"
)

// Fetcher supplies raw feed entries for one run.
type Fetcher interface {
	Fetch(ctx context.Context) ([]*models.RawEntry, error)
}

// Syncer runs one load, fetch, merge and save pass.
type Syncer struct {
	loader     *Loader
	fetcher    Fetcher
	normalizer *Normalizer
	merger     *Merger
	writer     storage.DatasetWriter
	mirrors    []storage.DatasetWriter
	logger     *utils.Logger
}

// NewSyncer wires the pipeline. Mirrors receive the merged dataset after the
// primary writer succeeds.
func NewSyncer(loader *Loader, fetcher Fetcher, normalizer *Normalizer, merger *Merger,
	writer storage.DatasetWriter, logger *utils.Logger, mirrors ...storage.DatasetWriter) *Syncer {
	return &Syncer{
		loader:     loader,
		fetcher:    fetcher,
		normalizer: normalizer,
		merger:     merger,
		writer:     writer,
		mirrors:    mirrors,
		logger:     logger,
	}
}

// Run executes the pipeline. Nothing is written unless loading and fetching
// both succeeded.
func (s *Syncer) Run(ctx context.Context) (*MergeResult, error) {
	existing, bootstrapped, err := s.loader.Load()
	if err != nil {
		return nil, err
	}

	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: fetch feed: %w", err)
	}
	s.logger.Info("[sync] Fetched %d feed entries", len(raw))

	candidates := s.normalizer.Candidates(raw)
	result := s.merger.Merge(existing, candidates)

	if err := s.writer.Write(result.Records); err != nil {
		return nil, fmt.Errorf("sync: write dataset: %w", err)
	}
	if bootstrapped {
		s.logger.Info("[sync] Dataset created from bootstrap export")
	}

	for _, m := range s.mirrors {
		if err := m.Write(result.Records); err != nil {
			return result, fmt.Errorf("sync: write mirror: %w", err)
		}
	}

	return result, nil
}
