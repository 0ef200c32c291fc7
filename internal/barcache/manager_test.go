package barcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/pkg/logger"
)

// fakeProvider serves deterministic weekday bars and counts calls
type fakeProvider struct {
	mu       sync.Mutex
	calls    atomic.Int64
	failNext bool
	delay    time.Duration
}

func (p *fakeProvider) FetchBars(ctx context.Context, symbol, market string, from, to time.Time) (contracts.BarSeries, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	fail := p.failNext
	p.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("%w: upstream down", contracts.ErrDataUnavailable)
	}

	bars := contracts.BarSeries{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		bars = append(bars, contracts.Bar{
			Date: d, Open: 100, High: 105, Low: 95, Close: 100, Volume: 1000, Value: 100_000,
		})
	}
	return bars, nil
}

func (p *fakeProvider) setFail(fail bool) {
	p.mu.Lock()
	p.failNext = fail
	p.mu.Unlock()
}

func newTestManager(p contracts.BarProvider) *Manager {
	return New(p, 120, 2*time.Second, logger.Nop())
}

func TestManager_BootstrapThenIncremental(t *testing.T) {
	p := &fakeProvider{}
	m := newTestManager(p)
	ctx := context.Background()

	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC) // 금요일

	series, err := m.GetOrUpdate(ctx, "005930", "KOSPI", asOf)
	require.NoError(t, err)
	assert.Greater(t, series.Len(), 100, "bootstrap should cover ~120 trading days")
	assert.Equal(t, asOf, series.LastDate())
	assert.NoError(t, series.Validate())
	assert.Equal(t, int64(1), p.calls.Load())

	// 같은 as-of 재조회는 fetch 없이 캐시 반환
	again, err := m.GetOrUpdate(ctx, "005930", "KOSPI", asOf)
	require.NoError(t, err)
	assert.Equal(t, series.Len(), again.Len())
	assert.Equal(t, int64(1), p.calls.Load())

	// 다음 거래일로 진행하면 델타만 append
	nextDay := asOf.AddDate(0, 0, 3) // 월요일
	updated, err := m.GetOrUpdate(ctx, "005930", "KOSPI", nextDay)
	require.NoError(t, err)
	assert.Equal(t, series.Len()+1, updated.Len())
	assert.Equal(t, nextDay, updated.LastDate())
	assert.Equal(t, int64(2), p.calls.Load())
}

func TestManager_HolidayDoesNotRefetch(t *testing.T) {
	p := &fakeProvider{}
	m := newTestManager(p)
	ctx := context.Background()

	friday := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	saturday := friday.AddDate(0, 0, 1)

	_, err := m.GetOrUpdate(ctx, "005930", "KOSPI", friday)
	require.NoError(t, err)

	// 토요일 조회: 새 바 없음, 한 번만 확인 후 기억
	s1, err := m.GetOrUpdate(ctx, "005930", "KOSPI", saturday)
	require.NoError(t, err)
	assert.Equal(t, friday, s1.LastDate())
	callsAfterCheck := p.calls.Load()

	s2, err := m.GetOrUpdate(ctx, "005930", "KOSPI", saturday)
	require.NoError(t, err)
	assert.Equal(t, s1.Len(), s2.Len())
	assert.Equal(t, callsAfterCheck, p.calls.Load(), "second holiday lookup must not refetch")
}

func TestManager_FailureKeepsStaleEntry(t *testing.T) {
	p := &fakeProvider{}
	m := newTestManager(p)
	ctx := context.Background()

	friday := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	monday := friday.AddDate(0, 0, 3)

	series, err := m.GetOrUpdate(ctx, "005930", "KOSPI", friday)
	require.NoError(t, err)

	p.setFail(true)
	_, err = m.GetOrUpdate(ctx, "005930", "KOSPI", monday)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)

	// 실패해도 기존 시리즈는 그대로 조회 가능
	stale, ok := m.GetStale("005930", "KOSPI")
	require.True(t, ok)
	assert.Equal(t, series.Len(), stale.Len())
	assert.Equal(t, friday, stale.LastDate())

	// 복구 후에는 정상 델타 fetch
	p.setFail(false)
	recovered, err := m.GetOrUpdate(ctx, "005930", "KOSPI", monday)
	require.NoError(t, err)
	assert.Equal(t, monday, recovered.LastDate())
}

func TestManager_FetchTimeout(t *testing.T) {
	p := &fakeProvider{delay: 200 * time.Millisecond}
	m := New(p, 120, 20*time.Millisecond, logger.Nop())

	_, err := m.GetOrUpdate(context.Background(), "005930", "KOSPI",
		time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestManager_SingleFlightPerKey(t *testing.T) {
	p := &fakeProvider{delay: 50 * time.Millisecond}
	m := newTestManager(p)
	ctx := context.Background()

	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			series, err := m.GetOrUpdate(ctx, "005930", "KOSPI", asOf)
			if err == nil {
				results[i] = series.Len()
			}
		}(i)
	}
	wg.Wait()

	// 같은 키의 동시 조회는 한 번만 fetch하고 모두 같은 결과를 봄
	assert.Equal(t, int64(1), p.calls.Load())
	for i := 1; i < 10; i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestManager_CallerMutationDoesNotCorruptCache(t *testing.T) {
	p := &fakeProvider{}
	m := newTestManager(p)
	ctx := context.Background()

	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	series, err := m.GetOrUpdate(ctx, "005930", "KOSPI", asOf)
	require.NoError(t, err)
	series[0].Close = -1

	again, err := m.GetOrUpdate(ctx, "005930", "KOSPI", asOf)
	require.NoError(t, err)
	assert.Equal(t, 100.0, again[0].Close)
}

func TestManager_Stats(t *testing.T) {
	p := &fakeProvider{}
	m := newTestManager(p)
	ctx := context.Background()

	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	_, err := m.GetOrUpdate(ctx, "005930", "KOSPI", asOf)
	require.NoError(t, err)
	_, err = m.GetOrUpdate(ctx, "000660", "KOSPI", asOf)
	require.NoError(t, err)
	_, err = m.GetOrUpdate(ctx, "005930", "KOSPI", asOf) // hit
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, 2, stats.EntryCount)
	assert.Greater(t, stats.TotalBars, 0)
	assert.Greater(t, stats.TotalBytes, int64(0))
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 2, stats.PerMarket["KOSPI"].Entries)
}
