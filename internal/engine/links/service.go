package links

import (
	"context"
	"errors"
	"sort"

	"shortr/internal/pkg/logger"
	"shortr/internal/pkg/metrics"
)

type Service struct {
	repo   *Repository
	issuer *Issuer
	log    logger.Logger
}

func NewService(repo *Repository, issuer *Issuer, log logger.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, log: log}
}

// Shorten issues a record for the candidate and stores it.
func (s *Service) Shorten(ctx context.Context, c Candidate) (*LinkRecord, error) {
	record, err := s.issuer.Issue(ctx, c, s.repo)
	if err != nil {
		countFailure(err)
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		// Another writer took the code between the check and the insert.
		countFailure(err)
		logger.Logf(s.log, logger.State, logger.Error, "Failed to store %s: %v", record.Shortcode, err)
		return nil, err
	}

	metrics.LinksIssued.Inc()
	logger.Logf(s.log, logger.State, logger.Info, "Stored shortened URL %s", record.Shortcode)
	return record, nil
}

// ShortenBatch issues and stores each candidate independently. Records that
// fail to store move to the failed list; the failed list stays in candidate
// order.
func (s *Service) ShortenBatch(ctx context.Context, candidates []Candidate) *BatchResult {
	result := s.issuer.IssueBatch(ctx, candidates, s.repo)

	stored := make([]*LinkRecord, 0, len(result.Issued))
	storedIdx := make([]int, 0, len(result.Issued))
	for i, record := range result.Issued {
		idx := result.indices[i]
		if err := s.repo.Create(ctx, record); err != nil {
			logger.Logf(s.log, logger.State, logger.Error, "Failed to store %s: %v", record.Shortcode, err)
			result.fail(idx, candidates[idx], err)
			continue
		}
		metrics.LinksIssued.Inc()
		stored = append(stored, record)
		storedIdx = append(storedIdx, idx)
	}
	result.Issued, result.indices = stored, storedIdx

	sort.SliceStable(result.Failed, func(i, j int) bool {
		return result.Failed[i].Index < result.Failed[j].Index
	})
	for _, f := range result.Failed {
		countFailure(f.Err)
	}

	issued, failed := result.Counts()
	if failed > 0 {
		logger.Logf(s.log, logger.Component, logger.Warn, "Batch completed: %d issued, %d failed", issued, failed)
	} else {
		logger.Logf(s.log, logger.Component, logger.Info, "Batch completed: %d issued", issued)
	}
	return result
}

func (s *Service) GetLink(ctx context.Context, code string) (*LinkRecord, error) {
	return s.repo.GetByShortCode(ctx, code)
}

func (s *Service) ListLinks(ctx context.Context, limit, offset int) ([]*LinkRecord, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) CountLinks(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// RecordClick appends a click to an existing link.
func (s *Service) RecordClick(ctx context.Context, code string, click ClickEvent) error {
	if err := s.repo.AppendClick(ctx, code, click); err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Logf(s.log, logger.Hook, logger.Warn, "Click for unknown shortcode %s dropped", code)
		} else {
			logger.Logf(s.log, logger.Hook, logger.Error, "Failed to record click for %s: %v", code, err)
		}
		return err
	}

	metrics.ClicksRecorded.Inc()
	logger.Logf(s.log, logger.Hook, logger.Info, "Click recorded for %s from %s", code, click.Location)
	return nil
}

// ImportResult reports how many records an import stored and skipped.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import stores records with their clicks. Shortcodes already present are
// skipped, never overwritten.
func (s *Service) Import(ctx context.Context, records []*LinkRecord) (*ImportResult, error) {
	res := &ImportResult{}
	for _, record := range records {
		if err := ValidateShortcode(record.Shortcode); err != nil {
			logger.Logf(s.log, logger.Utils, logger.Warn, "Skipping imported record %q: %v", record.Shortcode, err)
			res.Skipped++
			continue
		}
		if record.ShortURL == "" {
			record.ShortURL = s.issuer.ShortURL(record.Shortcode)
		}

		err := s.repo.Create(ctx, record)
		if errors.Is(err, ErrCodeExists) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, err
		}
		res.Imported++
	}

	logger.Logf(s.log, logger.State, logger.Info, "Imported %d records, skipped %d", res.Imported, res.Skipped)
	return res, nil
}

func countFailure(err error) {
	reason := "store"
	switch {
	case IsValidationError(err):
		reason = "validation"
	case errors.Is(err, ErrCodeExists):
		reason = "conflict"
	case errors.Is(err, ErrExhaustedCodeSpace):
		reason = "exhausted"
	}
	metrics.IssueFailures.WithLabelValues(reason).Inc()
}
