package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/garimpo/backend/internal/domain/negotiation"
)

// ExpiredItemSource lists the items a sweep must process.
type ExpiredItemSource interface {
	ListActiveItemsPastExpiry(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// Engine is the slice of the negotiation service the sweeper drives.
type Engine interface {
	ExpireItem(ctx context.Context, itemID uuid.UUID, now time.Time) (negotiation.ExpireOutcome, error)
}

// Stats summarizes a single sweep for observability.
type Stats struct {
	Expired int // items with no offers, now terminally expired
	Pending int // items whose winner moved to pending confirmation
	Skipped int // items that were no longer eligible by commit time
	Failed  int // items whose transition errored and was skipped
}

// Sweeper periodically discovers active items whose listing window elapsed
// and drives each through the engine's expiry transition. Each item is one
// atomic unit of work; one bad record never aborts the rest of the batch.
type Sweeper struct {
	source   ExpiredItemSource
	engine   Engine
	interval time.Duration
	logger   *slog.Logger
}

// New creates a sweeper that runs a sweep every interval.
func New(source ExpiredItemSource, engine Engine, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		source:   source,
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

// Run executes sweeps until the context is canceled. Rescheduling is
// fixed-delay, not fixed-rate: the timer is re-armed only after a sweep
// finishes, so a slow run can never overlap the next one.
func (s *Sweeper) Run(ctx context.Context) error {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	// Initial sweep so a restart doesn't wait a full interval to pick up
	// items that expired while the process was down.
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			s.sweep(ctx)
			timer.Reset(s.interval)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	stats, err := s.RunExpirationSweep(ctx, time.Now())
	if err != nil {
		s.logger.Error("expiration sweep failed", "error", err)
		return
	}

	if stats.Expired+stats.Pending+stats.Skipped+stats.Failed > 0 {
		s.logger.Info("expiration sweep finished",
			"expired", stats.Expired,
			"pending", stats.Pending,
			"skipped", stats.Skipped,
			"failed", stats.Failed,
		)
	}
}

// RunExpirationSweep processes every active item past expiry as of now.
// Failures are logged and counted per item; the sweep continues over the
// remaining batch. Items that raced a user transition or a concurrent tick
// come back as skipped, which is a success.
func (s *Sweeper) RunExpirationSweep(ctx context.Context, now time.Time) (Stats, error) {
	var stats Stats

	ids, err := s.source.ListActiveItemsPastExpiry(ctx, now)
	if err != nil {
		return stats, fmt.Errorf("failed to query expired items: %w", err)
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		outcome, err := s.engine.ExpireItem(ctx, id, now)
		if err != nil {
			stats.Failed++
			s.logger.Error("failed to expire item", "item_id", id, "error", err)
			continue
		}

		switch outcome {
		case negotiation.ExpireOutcomeExpired:
			stats.Expired++
		case negotiation.ExpireOutcomePending:
			stats.Pending++
		case negotiation.ExpireOutcomeSkipped:
			stats.Skipped++
		}
	}

	return stats, nil
}
