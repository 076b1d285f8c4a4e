package analytics

import (
	"context"
	"time"

	"shortr/internal/engine/links"
	"shortr/internal/pkg/logger"
)

// LinkReader loads a record with its click history.
type LinkReader interface {
	GetLink(ctx context.Context, code string) (*links.LinkRecord, error)
}

type Config struct {
	Location     *time.Location
	TopLocations int
}

// Report is the full analytics view of one link.
type Report struct {
	Shortcode    string             `json:"shortcode"`
	OriginalURL  string             `json:"original_url"`
	ShortURL     string             `json:"short_url"`
	CreatedAt    time.Time          `json:"created_at"`
	ExpiryDate   time.Time          `json:"expiry_date"`
	Summary      Summary            `json:"summary"`
	TopLocations []LocationCount    `json:"top_locations"`
	ClickTrends  []DailyCount       `json:"click_trends"`
	Breakdown    Breakdown          `json:"breakdown"`
	Clicks       []links.ClickEvent `json:"clicks"`
}

type Service struct {
	links LinkReader
	repo  *Repository
	cfg   Config
	now   func() time.Time
	log   logger.Logger
}

func NewService(links LinkReader, repo *Repository, cfg Config, log logger.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.TopLocations <= 0 {
		cfg.TopLocations = DefaultTopLocations
	}
	return &Service{links: links, repo: repo, cfg: cfg, now: time.Now, log: log}
}

// Report recomputes every view of the link from its stored clicks. A
// non-positive limit selects the configured number of top locations.
func (s *Service) Report(ctx context.Context, code string, limit int) (*Report, error) {
	record, err := s.links.GetLink(ctx, code)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.TopLocations
	}

	logger.Logf(s.log, logger.Page, logger.Debug, "Building analytics for %s (%d clicks)", code, len(record.Clicks))

	return &Report{
		Shortcode:    record.Shortcode,
		OriginalURL:  record.OriginalURL,
		ShortURL:     record.ShortURL,
		CreatedAt:    record.CreatedAt,
		ExpiryDate:   record.ExpiryDate,
		Summary:      Summarize(record, s.now()),
		TopLocations: TopLocations(record.Clicks, limit),
		ClickTrends:  ClickTrends(record.Clicks, s.cfg.Location),
		Breakdown:    BreakdownClients(record.Clicks),
		Clicks:       record.Clicks,
	}, nil
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	o, err := s.repo.Totals(ctx, s.now())
	if err != nil {
		logger.Logf(s.log, logger.Page, logger.Error, "Failed to compute overview: %v", err)
		return nil, err
	}

	o.TopLinks, err = s.repo.TopLinks(ctx, s.cfg.TopLocations)
	if err != nil {
		logger.Logf(s.log, logger.Page, logger.Error, "Failed to compute top links: %v", err)
		return nil, err
	}
	return o, nil
}
