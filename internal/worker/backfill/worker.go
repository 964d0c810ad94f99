package backfill

import (
	"context"
	"errors"
	"fmt"

	"github.com/rosterpulse/rosterpulse/internal/roster"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"github.com/rosterpulse/rosterpulse/internal/storage"
	"github.com/rosterpulse/rosterpulse/internal/worker/update"
	"go.uber.org/zap"
)

// ErrPartialFailure indicates the backfill failed on one or more platforms.
// The remaining platforms were still attempted.
var ErrPartialFailure = errors.New("backfill failed on some platforms")

// Worker fetches the full 12-month historical window for a newly added
// influencer, one platform at a time.
type Worker struct {
	sink    storage.Sink
	fetcher update.Fetcher
	logger  *zap.Logger
}

// New creates a backfill worker.
func New(sink storage.Sink, fetcher update.Fetcher, logger *zap.Logger) *Worker {
	return &Worker{
		sink:    sink,
		fetcher: fetcher,
		logger:  logger.Named("backfill_worker"),
	}
}

// Run backfills every platform the influencer has a handle for. Platforms
// without a handle are never queried; a failed platform is logged and does
// not prevent attempting the rest.
func (w *Worker) Run(ctx context.Context, inf *roster.Influencer) error {
	var failed int

	for _, p := range socialblade.Platforms() {
		handle := inf.Handle(p)
		if handle == "" {
			continue
		}

		w.logger.Info("Fetching historical data",
			zap.String("influencer", inf.Name),
			zap.String("platform", string(p)))

		samples, err := w.fetcher.FetchWindow(ctx, p, handle, socialblade.WindowExtended)
		if err != nil {
			w.logger.Error("Failed to fetch historical data",
				zap.String("influencer", inf.Name),
				zap.String("platform", string(p)),
				zap.String("handle", handle),
				zap.Error(err))

			failed++

			continue
		}

		for _, sample := range samples {
			sample.InfluencerID = inf.ID
		}

		if err := w.sink.SaveMetrics(ctx, p, samples); err != nil {
			w.logger.Error("Failed to persist historical data",
				zap.String("influencer", inf.Name),
				zap.String("platform", string(p)),
				zap.Error(err))

			failed++

			continue
		}

		w.logger.Info("Saved historical data",
			zap.String("platform", string(p)),
			zap.Int("samples", len(samples)))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d platform(s)", ErrPartialFailure, failed)
	}

	return nil
}
