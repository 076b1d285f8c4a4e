package redirect

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"shortr/internal/engine/links"
	"shortr/internal/pkg/geoip"
	"shortr/internal/pkg/logger"
	"shortr/internal/pkg/metrics"
)

// ClickStore appends a click to a stored link.
type ClickStore interface {
	RecordClick(ctx context.Context, code string, click links.ClickEvent) error
}

// ClickRecorder builds click events and hands them to the store. Async
// recordings are tracked so shutdown can wait for them.
type ClickRecorder struct {
	store ClickStore
	geo   geoip.Resolver
	log   logger.Logger
	now   func() time.Time

	// bounds a detached recording, geolocation included
	asyncTimeout time.Duration
	wg           sync.WaitGroup
}

func NewClickRecorder(store ClickStore, geo geoip.Resolver, log logger.Logger) *ClickRecorder {
	return &ClickRecorder{
		store:        store,
		geo:          geo,
		log:          log,
		now:          time.Now,
		asyncTimeout: 10 * time.Second,
	}
}

// NewClick stamps a click with the current time and the visitor's location.
// A failed lookup yields links.UnknownLocation, never an error.
func (r *ClickRecorder) NewClick(ctx context.Context, ip, userAgent string) links.ClickEvent {
	click := links.ClickEvent{
		ID:        uuid.New().String(),
		Timestamp: r.now(),
		Source:    userAgent,
		Location:  links.UnknownLocation,
	}

	location, err := r.geo.Locate(ctx, ip)
	if err != nil {
		metrics.GeoLookupFailures.Inc()
		logger.Logf(r.log, logger.Utils, logger.Warn, "Failed to get location data: %v", err)
		return click
	}

	click.Location = location
	return click
}

func (r *ClickRecorder) Record(ctx context.Context, code, ip, userAgent string) (links.ClickEvent, error) {
	logger.Logf(r.log, logger.API, logger.Info, "Recording click for shortcode: %s", code)

	click := r.NewClick(ctx, ip, userAgent)
	if err := r.store.RecordClick(ctx, code, click); err != nil {
		logger.Logf(r.log, logger.API, logger.Error, "Failed to record click for shortcode %s: %v", code, err)
		return links.ClickEvent{}, err
	}
	return click, nil
}

// RecordAsync records a click without holding up the caller. It takes only
// values so the request context ending does not cancel it.
func (r *ClickRecorder) RecordAsync(code, ip, userAgent string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// Ensure we don't crash the main process
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("shortcode", code).Msg("Recovered from panic while recording click")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.asyncTimeout)
		defer cancel()

		r.Record(ctx, code, ip, userAgent)
	}()
}

// Wait blocks until every RecordAsync call has finished.
func (r *ClickRecorder) Wait() {
	r.wg.Wait()
}
