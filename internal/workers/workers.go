package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"shortr/internal/engine/analytics"
	"shortr/internal/pkg/metrics"
)

// OverviewSource is satisfied by analytics.Service.
type OverviewSource interface {
	Overview(ctx context.Context) (*analytics.Overview, error)
}

// RefreshStoreGauges publishes the store-wide totals as gauges.
func RefreshStoreGauges(ctx context.Context, src OverviewSource) error {
	o, err := src.Overview(ctx)
	if err != nil {
		return err
	}

	metrics.LinksStored.Set(float64(o.TotalLinks))
	metrics.LinksExpired.Set(float64(o.ExpiredLinks))
	metrics.ClicksStored.Set(float64(o.TotalClicks))
	return nil
}

// RunStoreGauges refreshes the gauges every interval until ctx is done.
// A non-positive interval disables the loop.
func RunStoreGauges(ctx context.Context, src OverviewSource, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := RefreshStoreGauges(ctx, src); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("Worker: failed to refresh store gauges")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
