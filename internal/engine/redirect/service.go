package redirect

import (
	"context"

	"shortr/internal/engine/links"
	"shortr/internal/pkg/metrics"
)

type LinkReader interface {
	GetLink(ctx context.Context, code string) (*links.LinkRecord, error)
}

// Service resolves shortcodes for the redirect path, reading through the
// cache.
type Service struct {
	links    LinkReader
	cache    LinkCache
	recorder *ClickRecorder
}

func NewService(links LinkReader, cache LinkCache, recorder *ClickRecorder) *Service {
	return &Service{links: links, cache: cache, recorder: recorder}
}

func (s *Service) Resolve(ctx context.Context, code string) (*CachedLink, error) {
	if cached, ok := s.cache.Get(ctx, code); ok {
		return cached, nil
	}

	record, err := s.links.GetLink(ctx, code)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, code, record)
	return NewCachedLink(record), nil
}

// Visit resolves code and records the click in the background. Expiry does
// not block the redirect.
func (s *Service) Visit(ctx context.Context, code, ip, userAgent string) (*CachedLink, error) {
	target, err := s.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	metrics.Redirects.Inc()
	s.recorder.RecordAsync(code, ip, userAgent)
	return target, nil
}

func (s *Service) Recorder() *ClickRecorder {
	return s.recorder
}
