package barstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/pkg/logger"
)

type memStore struct {
	saved   map[string]contracts.BarSeries
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{saved: make(map[string]contracts.BarSeries)}
}

func (m *memStore) FetchBars(ctx context.Context, symbol, market string, from, to time.Time) (contracts.BarSeries, error) {
	return m.saved[symbol].Clone(), nil
}

func (m *memStore) SaveBars(ctx context.Context, symbol, market string, bars contracts.BarSeries) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[symbol] = bars.Clone()
	return nil
}

type stubRemote struct {
	bars contracts.BarSeries
	err  error
}

func (r *stubRemote) FetchBars(ctx context.Context, symbol, market string, from, to time.Time) (contracts.BarSeries, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.bars, nil
}

func sampleBars() contracts.BarSeries {
	return contracts.BarSeries{
		{Date: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), Close: 100, Volume: 10},
		{Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), Close: 101, Volume: 12},
	}
}

func TestWriteThrough_PersistsFetchedBars(t *testing.T) {
	store := newMemStore()
	remote := &stubRemote{bars: sampleBars()}
	wt := NewWriteThrough(remote, store, logger.Nop())

	bars, err := wt.FetchBars(context.Background(), "005930", "KOSPI",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.Len(t, store.saved["005930"], 2)
}

func TestWriteThrough_SaveFailureDoesNotBlockReads(t *testing.T) {
	store := newMemStore()
	store.saveErr = fmt.Errorf("disk full")
	remote := &stubRemote{bars: sampleBars()}
	wt := NewWriteThrough(remote, store, logger.Nop())

	bars, err := wt.FetchBars(context.Background(), "005930", "KOSPI",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestWriteThrough_FallsBackToStore(t *testing.T) {
	store := newMemStore()
	store.saved["005930"] = sampleBars()
	remote := &stubRemote{err: fmt.Errorf("%w: upstream down", contracts.ErrDataUnavailable)}
	wt := NewWriteThrough(remote, store, logger.Nop())

	bars, err := wt.FetchBars(context.Background(), "005930", "KOSPI",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestWriteThrough_NoFallbackDataPropagatesError(t *testing.T) {
	store := newMemStore()
	remote := &stubRemote{err: fmt.Errorf("%w: upstream down", contracts.ErrDataUnavailable)}
	wt := NewWriteThrough(remote, store, logger.Nop())

	_, err := wt.FetchBars(context.Background(), "005930", "KOSPI",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}
