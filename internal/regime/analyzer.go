package regime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/engineconfig"
	"github.com/wonny/horizon/pkg/logger"
	"github.com/wonny/horizon/pkg/redis"
)

// BarSource is the slice of the cache manager the analyzer needs
type BarSource interface {
	GetOrUpdate(ctx context.Context, symbol, market string, asOf time.Time) (contracts.BarSeries, error)
}

// Analyzer computes the composite market regime per date
// ⭐ SSOT: 시장 국면 분류는 여기서만
//
// 마감된 거래일의 결과는 날짜별로 캐시되어 재계산 없이 반환됨.
// 당일은 호출마다 재계산 (신선도는 바 캐시의 staleness 정책에 따름)
type Analyzer struct {
	bars   BarSource
	cfg    engineconfig.Regime
	loc    *time.Location
	logger *logger.Logger

	mu      sync.RWMutex
	results map[string]*contracts.RegimeResult

	// shared is the optional cross-process result cache (closed dates only)
	shared *redis.Cache

	// now is replaceable in tests
	now func() time.Time
}

// New creates a new regime analyzer
func New(bars BarSource, cfg *engineconfig.Config, shared *redis.Cache, log *logger.Logger) *Analyzer {
	loc, err := time.LoadLocation(cfg.Meta.Timezone)
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &Analyzer{
		bars:    bars,
		cfg:     cfg.Regime,
		loc:     loc,
		logger:  log,
		results: make(map[string]*contracts.RegimeResult),
		shared:  shared,
		now:     time.Now,
	}
}

// Classify returns the regime result for a date.
// 과거 일자는 캐시 적중 시 저장된 결과를 그대로 반환 (idempotent)
func (a *Analyzer) Classify(ctx context.Context, date time.Time) (*contracts.RegimeResult, error) {
	dateKey := date.In(a.loc).Format("2006-01-02")
	closed := a.isClosedDate(date)

	if closed {
		a.mu.RLock()
		cached, ok := a.results[dateKey]
		a.mu.RUnlock()
		if ok {
			return cached, nil
		}

		// 다른 프로세스가 이미 계산한 결과 재사용
		var sharedResult contracts.RegimeResult
		if found, _ := a.shared.Get(ctx, redis.RegimeKey(dateKey), &sharedResult); found {
			a.mu.Lock()
			a.results[dateKey] = &sharedResult
			a.mu.Unlock()
			return &sharedResult, nil
		}
	}

	result := a.compute(ctx, date)

	a.mu.Lock()
	a.results[dateKey] = result
	a.mu.Unlock()

	if closed {
		if err := a.shared.Set(ctx, redis.RegimeKey(dateKey), result, redis.TTLWeek); err != nil {
			a.logger.WithError(err).Warn("Failed to share regime result")
		}
	}

	a.logger.WithFields(map[string]interface{}{
		"date":      dateKey,
		"regime":    string(result.FinalRegime),
		"score":     result.FinalScore,
		"pre_open":  string(result.PreOpen),
		"defaulted": result.DefaultedSources,
	}).Info("Regime classified")

	return result, nil
}

// compute derives the composite regime from the three sentiment sources
func (a *Analyzer) compute(ctx context.Context, date time.Time) *contracts.RegimeResult {
	result := &contracts.RegimeResult{
		Date:       date,
		ComputedAt: a.now(),
	}

	// 1. KR 당일 세션
	var krBar contracts.Bar
	krOK := false
	result.KR = a.resolveSource(ctx, a.cfg.Sources.KRIndex, date, func(s contracts.BarSeries) int {
		idx := indexAt(s, date)
		if idx >= 0 {
			krBar = s[idx]
			krOK = true
		}
		return idx
	})
	if result.KR.Defaulted {
		result.DefaultedSources = append(result.DefaultedSources, contracts.SourceKR)
	}

	// 2. US 전일 종가 세션
	result.USPrev = a.resolveSource(ctx, a.cfg.Sources.USIndex, date, func(s contracts.BarSeries) int {
		return indexBefore(s, date)
	})
	if result.USPrev.Defaulted {
		result.DefaultedSources = append(result.DefaultedSources, contracts.SourceUSPrev)
	}

	// 3. US 프리장 선물
	result.USFutures = a.resolveSource(ctx, a.cfg.Sources.USFutures, date, func(s contracts.BarSeries) int {
		return indexAtOrBefore(s, date)
	})
	if result.USFutures.Defaulted {
		result.DefaultedSources = append(result.DefaultedSources, contracts.SourceUSFutures)
	}

	// 가중 합성 점수
	score := a.cfg.KRWeight*result.KR.Score + a.cfg.USWeight*result.USPrev.Score

	// 프리장 경고 밴드에 따른 감점
	result.PreOpen = a.preOpenSignal(result.USFutures)
	switch result.PreOpen {
	case contracts.PreOpenWatch:
		score -= a.cfg.PreOpen.WatchPenalty
	case contracts.PreOpenDanger:
		score -= a.cfg.PreOpen.DangerPenalty
	}
	result.FinalScore = score

	// crash 오버라이드: 점수 부호와 무관하게 최우선
	if reason := a.crashReason(ctx, date, krBar, krOK); reason != "" {
		result.FinalRegime = contracts.RegimeCrash
		result.CrashReason = reason
		return result
	}

	switch {
	case score >= a.cfg.BullMin:
		result.FinalRegime = contracts.RegimeBull
	case score <= a.cfg.BearMax:
		result.FinalRegime = contracts.RegimeBear
	default:
		result.FinalRegime = contracts.RegimeNeutral
	}
	return result
}

// resolveSource fetches one source's series and derives its metrics.
// 소스 단위 장애는 중립 대체로 강등되고 배치는 계속됨
func (a *Analyzer) resolveSource(ctx context.Context, src engineconfig.Source, date time.Time, pick func(contracts.BarSeries) int) contracts.SourceMetrics {
	series, err := a.bars.GetOrUpdate(ctx, src.Symbol, src.Market, date)
	if err != nil {
		a.logger.WithError(err).WithField("symbol", src.Symbol).Warn("Regime source unavailable, using neutral default")
		return defaultedMetrics()
	}
	idx := pick(series)
	m := deriveMetrics(src, series, idx)
	if m.Defaulted {
		m.Label = contracts.SourceNeutral
	}
	return m
}

// preOpenSignal maps the futures return to a warning band
func (a *Analyzer) preOpenSignal(fut contracts.SourceMetrics) contracts.PreOpenSignal {
	if fut.Defaulted {
		return contracts.PreOpenNone
	}
	switch {
	case fut.Return <= a.cfg.PreOpen.DangerReturn:
		return contracts.PreOpenDanger
	case fut.Return <= a.cfg.PreOpen.WatchReturn:
		return contracts.PreOpenWatch
	default:
		return contracts.PreOpenCalm
	}
}

// crashReason checks the crash override conditions.
// 당일 지수 급락 또는 변동성 지수 급등 중 하나면 발동
func (a *Analyzer) crashReason(ctx context.Context, date time.Time, krBar contracts.Bar, krOK bool) string {
	if krOK {
		if dd := intradayDrawdown(krBar); dd <= a.cfg.Crash.IntradayDrawdown {
			return fmt.Sprintf("intraday drawdown %.2f%% <= %.2f%%", dd, a.cfg.Crash.IntradayDrawdown)
		}
	}

	src := a.cfg.Sources.VolIndex
	series, err := a.bars.GetOrUpdate(ctx, src.Symbol, src.Market, date)
	if err != nil {
		// 변동성 지수 결측은 crash 판단에서 제외 (소스 강등과 동일 정책)
		a.logger.WithError(err).Warn("Volatility index unavailable for crash check")
		return ""
	}
	if idx := indexAtOrBefore(series, date); idx >= 0 {
		if v := series[idx].Close; v >= a.cfg.Crash.VolIndex {
			return fmt.Sprintf("volatility index %.1f >= %.1f", v, a.cfg.Crash.VolIndex)
		}
	}
	return ""
}

// isClosedDate reports whether the date's session is already closed
func (a *Analyzer) isClosedDate(date time.Time) bool {
	today := a.now().In(a.loc)
	d := date.In(a.loc)
	return d.Year() < today.Year() ||
		(d.Year() == today.Year() && d.YearDay() < today.YearDay())
}
