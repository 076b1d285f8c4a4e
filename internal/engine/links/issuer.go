package links

import (
	"context"
	"strings"
	"time"

	"shortr/internal/pkg/logger"
)

type IssuerConfig struct {
	BaseURL     string
	CodeLength  int
	MaxAttempts int
}

// Issuer turns candidates into link records. It only reads the checker it is
// given; storing the record is the caller's job.
type Issuer struct {
	baseURL string
	codes   *codeGenerator
	now     func() time.Time
	log     logger.Logger
}

func NewIssuer(cfg IssuerConfig, log logger.Logger) *Issuer {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = DefaultCodeLength
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Issuer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		codes: &codeGenerator{
			length:      cfg.CodeLength,
			maxAttempts: cfg.MaxAttempts,
			random:      GenerateShortCode,
		},
		now: time.Now,
		log: log,
	}
}

func (i *Issuer) ShortURL(code string) string {
	return i.baseURL + "/" + code
}

func (i *Issuer) Issue(ctx context.Context, c Candidate, checker CodeAvailabilityChecker) (*LinkRecord, error) {
	if err := ValidateCandidate(c); err != nil {
		logger.Logf(i.log, logger.Utils, logger.Warn, "Candidate validation failed for %s: %v", c.OriginalURL, err)
		return nil, err
	}

	code, err := i.codes.generate(ctx, c.PreferredCode, checker)
	if err != nil {
		logger.Logf(i.log, logger.API, logger.Error, "Failed to create shortened URL: %v", err)
		return nil, err
	}
	if c.PreferredCode != "" {
		logger.Logf(i.log, logger.Utils, logger.Info, "Using preferred shortcode: %s", code)
	} else {
		logger.Logf(i.log, logger.Utils, logger.Info, "Generated unique shortcode: %s", code)
	}

	now := i.now()
	record := &LinkRecord{
		Shortcode:       code,
		OriginalURL:     c.OriginalURL,
		ShortURL:        i.ShortURL(code),
		CreatedAt:       now,
		ExpiryDate:      now.Add(time.Duration(c.ValidityMinutes) * time.Minute),
		ValidityMinutes: c.ValidityMinutes,
		Clicks:          []ClickEvent{},
	}

	logger.Logf(i.log, logger.API, logger.Info, "Successfully created shortened URL: %s -> %s", code, c.OriginalURL)
	return record, nil
}

type BatchFailure struct {
	Index       int    `json:"index"`
	OriginalURL string `json:"original_url"`
	Err         error  `json:"-"`
	Message     string `json:"error"`
}

type BatchResult struct {
	Issued []*LinkRecord   `json:"issued"`
	Failed []*BatchFailure `json:"failed"`

	// candidate index of each Issued record
	indices []int
}

func (r *BatchResult) Counts() (issued, failed int) {
	return len(r.Issued), len(r.Failed)
}

func (r *BatchResult) fail(index int, c Candidate, err error) {
	r.Failed = append(r.Failed, &BatchFailure{
		Index:       index,
		OriginalURL: c.OriginalURL,
		Err:         err,
		Message:     err.Error(),
	})
}

// IssueBatch issues every candidate independently. A failed item never stops
// the rest of the batch.
func (i *Issuer) IssueBatch(ctx context.Context, candidates []Candidate, checker CodeAvailabilityChecker) *BatchResult {
	logger.Logf(i.log, logger.API, logger.Info, "Processing batch of %d URLs for shortening", len(candidates))

	result := &BatchResult{Issued: []*LinkRecord{}, Failed: []*BatchFailure{}}
	local := &batchChecker{base: checker, issued: NewCodeSet()}

	for idx, c := range candidates {
		record, err := i.Issue(ctx, c, local)
		if err != nil {
			result.fail(idx, c, err)
			continue
		}
		local.issued[record.Shortcode] = struct{}{}
		result.Issued = append(result.Issued, record)
		result.indices = append(result.indices, idx)
	}

	return result
}
