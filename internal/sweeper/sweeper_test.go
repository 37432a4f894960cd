package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garimpo/backend/internal/domain/negotiation"
)

type fakeSource struct {
	ids []uuid.UUID
	err error
}

func (f *fakeSource) ListActiveItemsPastExpiry(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	return f.ids, f.err
}

type fakeEngine struct {
	outcomes map[uuid.UUID]negotiation.ExpireOutcome
	errs     map[uuid.UUID]error
	calls    []uuid.UUID
}

func (f *fakeEngine) ExpireItem(ctx context.Context, itemID uuid.UUID, now time.Time) (negotiation.ExpireOutcome, error) {
	f.calls = append(f.calls, itemID)
	if err, ok := f.errs[itemID]; ok {
		return negotiation.ExpireOutcomeSkipped, err
	}
	return f.outcomes[itemID], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweeper_RunExpirationSweep(t *testing.T) {
	expired := uuid.New()
	pending := uuid.New()
	skipped := uuid.New()
	broken := uuid.New()

	source := &fakeSource{ids: []uuid.UUID{expired, pending, skipped, broken}}
	engine := &fakeEngine{
		outcomes: map[uuid.UUID]negotiation.ExpireOutcome{
			expired: negotiation.ExpireOutcomeExpired,
			pending: negotiation.ExpireOutcomePending,
			skipped: negotiation.ExpireOutcomeSkipped,
		},
		errs: map[uuid.UUID]error{
			broken: errors.New("lock timeout"),
		},
	}

	s := New(source, engine, time.Minute, discardLogger())
	stats, err := s.RunExpirationSweep(context.Background(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, Stats{Expired: 1, Pending: 1, Skipped: 1, Failed: 1}, stats)

	// Every item was attempted despite the failure in the middle of the batch.
	assert.Len(t, engine.calls, 4)
}

func TestSweeper_RunExpirationSweep_SourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	engine := &fakeEngine{}

	s := New(source, engine, time.Minute, discardLogger())
	_, err := s.RunExpirationSweep(context.Background(), time.Now())

	assert.Error(t, err)
	assert.Empty(t, engine.calls)
}

func TestSweeper_RunExpirationSweep_Empty(t *testing.T) {
	s := New(&fakeSource{}, &fakeEngine{}, time.Minute, discardLogger())
	stats, err := s.RunExpirationSweep(context.Background(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestSweeper_RunExpirationSweep_CanceledContext(t *testing.T) {
	source := &fakeSource{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	engine := &fakeEngine{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(source, engine, time.Minute, discardLogger())
	_, err := s.RunExpirationSweep(ctx, time.Now())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, engine.calls)
}

func TestSweeper_Run_StopsOnCancel(t *testing.T) {
	source := &fakeSource{}
	engine := &fakeEngine{}

	ctx, cancel := context.WithCancel(context.Background())
	s := New(source, engine, 10*time.Millisecond, discardLogger())

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
