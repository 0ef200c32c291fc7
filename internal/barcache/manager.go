package barcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/pkg/logger"
)

// Manager maintains per-symbol cached bar series with incremental updates
// ⭐ SSOT: 바 캐시 상태 변경은 이 매니저에서만
//
// 키(symbol, market) 단위로 직렬화: 같은 키의 fetch는 동시에 하나만 나감.
// 대기 중인 호출자는 진행 중인 fetch가 커밋한 결과를 그대로 재사용함.
type Manager struct {
	mu      sync.RWMutex
	entries map[key]*entry

	provider      contracts.BarProvider
	bootstrapDays int
	fetchTimeout  time.Duration
	logger        *logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

type key struct {
	symbol string
	market string
}

// entry owns one symbol's cached series.
// mu가 키 단위 fetch 직렬화 락을 겸함
type entry struct {
	mu        sync.Mutex
	series    contracts.BarSeries
	checkedAt time.Time // 마지막으로 확인한 as-of 날짜 (휴장일 재조회 방지)
	fetchedAt time.Time
}

// New creates a new cache manager
func New(provider contracts.BarProvider, bootstrapDays int, fetchTimeout time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		entries:       make(map[key]*entry),
		provider:      provider,
		bootstrapDays: bootstrapDays,
		fetchTimeout:  fetchTimeout,
		logger:        log,
	}
}

// GetOrUpdate returns the cached series for (symbol, market) as of a date,
// fetching the missing range first when the cache is stale.
//
//   - 엔트리 없음: bootstrap 구간 전체 fetch 후 저장
//   - last_date < as_of: (last_date, as_of] 델타만 fetch 후 append
//   - last_date >= as_of: 캐시 그대로 반환
//
// fetch 실패는 기존 엔트리를 훼손하지 않음: ErrDataUnavailable로 실패하고
// 기존 시리즈는 GetStale()로 계속 조회 가능
func (m *Manager) GetOrUpdate(ctx context.Context, symbol, market string, asOf time.Time) (contracts.BarSeries, error) {
	asOf = normalizeDate(asOf)
	e := m.entry(symbol, market)

	e.mu.Lock()
	defer e.mu.Unlock()

	if m.isFresh(e, asOf) {
		m.hits.Add(1)
		return e.series.Clone(), nil
	}
	m.misses.Add(1)

	from := m.fetchFrom(e, asOf)

	fctx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	defer cancel()

	fetched, err := m.provider.FetchBars(fctx, symbol, market, from, asOf)
	if err != nil {
		// 제한시간 초과 포함 모든 fetch 실패는 DataUnavailable로 수렴
		if !errors.Is(err, contracts.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %v", contracts.ErrDataUnavailable, err)
		}
		m.logger.WithError(err).WithFields(map[string]interface{}{
			"symbol": symbol,
			"market": market,
			"from":   from.Format("2006-01-02"),
			"to":     asOf.Format("2006-01-02"),
		}).Warn("Bar fetch failed, cache entry left untouched")
		return nil, fmt.Errorf("fetch bars %s/%s: %w", symbol, market, err)
	}

	// 델타 전체를 한 번에 커밋하거나, invariant 위반 시 전부 버림
	updated := e.series
	lastDate := e.series.LastDate()
	appended := 0
	for _, b := range fetched {
		b.Date = normalizeDate(b.Date)
		if !b.Date.After(lastDate) || b.Date.After(asOf) {
			continue // 이미 캐시된 구간 또는 범위 밖
		}
		next, err := updated.Append(b)
		if err != nil {
			return nil, fmt.Errorf("append bars %s/%s: %w", symbol, market, err)
		}
		updated = next
		lastDate = b.Date
		appended++
	}

	e.series = updated
	e.checkedAt = asOf
	e.fetchedAt = time.Now()

	m.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"market":   market,
		"appended": appended,
		"total":    e.series.Len(),
	}).Debug("Cache entry updated")

	return e.series.Clone(), nil
}

// GetStale returns whatever is cached without fetching.
// staleness를 감수하는 호출자용 (예: 폴백 경로)
func (m *Manager) GetStale(symbol, market string) (contracts.BarSeries, bool) {
	m.mu.RLock()
	e, ok := m.entries[key{symbol, market}]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.series.Len() == 0 {
		return nil, false
	}
	return e.series.Clone(), true
}

// isFresh reports whether the entry already covers the as-of date
func (m *Manager) isFresh(e *entry, asOf time.Time) bool {
	if !e.series.LastDate().Before(asOf) {
		return true
	}
	// 마지막 fetch가 같은 as-of까지 확인했다면 휴장일: 재조회하지 않음
	return !e.checkedAt.Before(asOf) && !e.checkedAt.IsZero()
}

// fetchFrom determines the fetch range start
func (m *Manager) fetchFrom(e *entry, asOf time.Time) time.Time {
	if e.series.Len() == 0 {
		// bootstrap: 거래일 기준 설정값을 달력일로 환산 (주말/휴일 여유 포함)
		calendarDays := m.bootstrapDays*7/5 + 15
		return asOf.AddDate(0, 0, -calendarDays)
	}
	return e.series.LastDate().AddDate(0, 0, 1)
}

// entry returns the entry for a key, creating it if needed
func (m *Manager) entry(symbol, market string) *entry {
	k := key{symbol, market}

	m.mu.RLock()
	e, ok := m.entries[k]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.entries[k]; ok {
		return e
	}
	e = &entry{}
	m.entries[k] = e
	return e
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
