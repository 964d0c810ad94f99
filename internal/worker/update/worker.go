package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rosterpulse/rosterpulse/internal/roster"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"github.com/rosterpulse/rosterpulse/internal/storage"
	"go.uber.org/zap"
)

// ErrPartialFailure indicates one or more (influencer, platform) pairs
// failed during a sweep. The sweep itself still ran to completion.
var ErrPartialFailure = errors.New("some influencer platforms failed to update")

// Fetcher retrieves metric samples for one platform handle.
type Fetcher interface {
	FetchWindow(
		ctx context.Context, p socialblade.Platform, handle string, w socialblade.Window,
	) ([]*socialblade.Sample, error)
}

// Summary reports what a sweep did.
type Summary struct {
	Influencers int
	Fetched     int
	Skipped     int
	Failed      int
}

// Worker runs the routine update sweep: every active influencer, every
// platform with a handle, refreshed when stale. Pairs are processed
// sequentially to completion; a failed pair never aborts the sweep.
type Worker struct {
	sink    storage.Sink
	fetcher Fetcher
	logger  *zap.Logger
}

// New creates a routine update worker.
func New(sink storage.Sink, fetcher Fetcher, logger *zap.Logger) *Worker {
	return &Worker{
		sink:    sink,
		fetcher: fetcher,
		logger:  logger.Named("update_worker"),
	}
}

// Run performs one full sweep. It returns ErrPartialFailure when any pair
// failed so the process can exit non-zero on partial-failure runs.
func (w *Worker) Run(ctx context.Context) (*Summary, error) {
	influencers, err := w.sink.ActiveInfluencers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active influencers: %w", err)
	}

	if len(influencers) == 0 {
		w.logger.Warn("No active influencers found")
		return &Summary{}, nil
	}

	summary := &Summary{Influencers: len(influencers)}

	for _, inf := range influencers {
		for _, p := range socialblade.Platforms() {
			handle := inf.Handle(p)
			if handle == "" {
				continue
			}

			if !roster.Due(inf.LastUpdatedOn(p), time.Now().UTC()) {
				summary.Skipped++
				continue
			}

			if w.updatePair(ctx, inf, p, handle) {
				summary.Fetched++
			} else {
				summary.Failed++
			}
		}
	}

	w.logger.Info("Routine update sweep finished",
		zap.Int("influencers", summary.Influencers),
		zap.Int("fetched", summary.Fetched),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d pair(s)", ErrPartialFailure, summary.Failed)
	}

	return summary, nil
}

// updatePair fetches, persists and stamps one (influencer, platform) pair.
// Failures are logged with the influencer and platform named and reported
// through the return value only.
func (w *Worker) updatePair(
	ctx context.Context, inf *roster.Influencer, p socialblade.Platform, handle string,
) bool {
	samples, err := w.fetcher.FetchWindow(ctx, p, handle, socialblade.WindowDefault)
	if err != nil {
		w.logger.Error("Failed to fetch metrics",
			zap.String("influencer", inf.Name),
			zap.String("platform", string(p)),
			zap.String("handle", handle),
			zap.Error(err))

		return false
	}

	for _, sample := range samples {
		sample.InfluencerID = inf.ID
	}

	if err := w.sink.SaveMetrics(ctx, p, samples); err != nil {
		w.logger.Error("Failed to persist metrics",
			zap.String("influencer", inf.Name),
			zap.String("platform", string(p)),
			zap.Error(err))

		return false
	}

	now := time.Now().UTC()

	if err := w.sink.SetLastUpdated(ctx, inf.ID, p, now); err != nil {
		w.logger.Error("Failed to stamp last update",
			zap.String("influencer", inf.Name),
			zap.String("platform", string(p)),
			zap.Error(err))

		return false
	}

	inf.SetLastUpdated(p, now)

	return true
}
