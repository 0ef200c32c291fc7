package scan

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/horizon/internal/barcache"
	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/engineconfig"
	"github.com/wonny/horizon/internal/regime"
	"github.com/wonny/horizon/internal/scoring"
	"github.com/wonny/horizon/internal/screening"
	"github.com/wonny/horizon/pkg/logger"
)

var scanDate = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC) // 금요일

// scriptedProvider serves per-symbol canned behavior for the whole pipeline
type scriptedProvider struct {
	uptrend map[string]bool
	broken  map[string]bool
}

func (p *scriptedProvider) FetchBars(ctx context.Context, symbol, market string, from, to time.Time) (contracts.BarSeries, error) {
	if p.broken[symbol] {
		return nil, fmt.Errorf("%w: upstream down", contracts.ErrDataUnavailable)
	}

	base := 10_000.0
	gain := 0.0
	if symbol == "VIX@VIX" {
		base = 15.0 // 변동성 지수는 절대값으로 판정되므로 낮게 고정
	}
	if p.uptrend[symbol] {
		gain = 0.3
	}

	bars := contracts.BarSeries{}
	price := base
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		bars = append(bars, contracts.Bar{
			Date:   d,
			Open:   price,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 200_000,
			Value:  price * 200_000,
		})
		price *= 1 + gain/100
	}
	return bars, nil
}

func newTestOrchestrator(p contracts.BarProvider) *Orchestrator {
	cfg := engineconfig.Default()
	log := logger.Nop()

	cache := barcache.New(p, cfg.Cache.BootstrapDays, 2*time.Second, log)
	analyzer := regime.New(cache, cfg, nil, log)
	stage1 := screening.New(cfg.Stage1, log)
	scorer := scoring.NewScorer(cfg, log)

	return NewOrchestrator(cache, analyzer, stage1, scorer, cfg, nil, log)
}

func TestRun_EndToEnd(t *testing.T) {
	p := &scriptedProvider{
		uptrend: map[string]bool{"AAA": true},
		broken:  map[string]bool{"CCC": true},
	}
	o := newTestOrchestrator(p)

	universe := []contracts.SymbolRef{
		{Code: "AAA", Market: "KOSPI"},
		{Code: "BBB", Market: "KOSPI"},
		{Code: "CCC", Market: "KOSPI"},
	}

	result, err := o.Run(context.Background(), scanDate, universe)
	require.NoError(t, err)

	// 전 소스 횡보 → neutral
	assert.Equal(t, contracts.RegimeNeutral, result.Regime.FinalRegime)

	assert.Equal(t, 3, result.UniverseSize)
	// AAA(상승), BBB(횡보)는 스테이지1 통과, CCC는 fetch 실패
	assert.Equal(t, 2, result.PassedStage1)

	// CCC 실패는 기록되고 배치는 계속됨
	require.Contains(t, result.Failures, "CCC")
	assert.Contains(t, result.Failures["CCC"], "unavailable")

	// AAA만 후보로 진입, BBB는 점수 미달로 제외
	admitted := map[string]bool{}
	for _, horizon := range contracts.HorizonsAll {
		for _, c := range result.Candidates[horizon] {
			admitted[c.Symbol] = true

			// 라벨/티어는 최종 adjusted score 하나에서 파생되어야 함
			assert.Equal(t, c.RawScore-c.RiskScore, c.AdjustedScore)
			assert.GreaterOrEqual(t, c.AdjustedScore, o.config.Cutoff(result.Regime.FinalRegime, horizon))
		}
		assert.Equal(t, len(result.Candidates[horizon]), result.Counts[horizon])
	}
	assert.True(t, admitted["AAA"])
	assert.False(t, admitted["BBB"])
	assert.False(t, admitted["CCC"])

	assert.NotEmpty(t, result.RunID)
	assert.NotEmpty(t, result.ConfigHash)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestRun_RankingOrderWithinHorizon(t *testing.T) {
	p := &scriptedProvider{
		uptrend: map[string]bool{"AAA": true, "BBB": true, "DDD": true},
		broken:  map[string]bool{},
	}
	o := newTestOrchestrator(p)

	universe := []contracts.SymbolRef{
		{Code: "DDD", Market: "KOSPI"},
		{Code: "AAA", Market: "KOSPI"},
		{Code: "BBB", Market: "KOSPI"},
	}

	result, err := o.Run(context.Background(), scanDate, universe)
	require.NoError(t, err)

	for _, horizon := range contracts.HorizonsAll {
		list := result.Candidates[horizon]
		for i := 1; i < len(list); i++ {
			prev, cur := list[i-1], list[i]
			ordered := prev.AdjustedScore > cur.AdjustedScore ||
				(prev.AdjustedScore == cur.AdjustedScore && prev.RiskScore < cur.RiskScore) ||
				(prev.AdjustedScore == cur.AdjustedScore && prev.RiskScore == cur.RiskScore && prev.Symbol < cur.Symbol)
			assert.True(t, ordered, "horizon %s index %d out of order", horizon, i)
		}
	}

	// 동일 시리즈 → 동점: 심볼 오름차순이 최종 타이브레이크
	if list := result.Candidates[contracts.HorizonPosition]; assert.Len(t, list, 3) {
		assert.Equal(t, "AAA", list[0].Symbol)
		assert.Equal(t, "BBB", list[1].Symbol)
		assert.Equal(t, "DDD", list[2].Symbol)
	}
}

func TestRun_CancellationAtSymbolBoundary(t *testing.T) {
	p := &scriptedProvider{
		uptrend: map[string]bool{},
		broken:  map[string]bool{},
	}
	o := newTestOrchestrator(p)

	universe := make([]contracts.SymbolRef, 0, 50)
	for i := 0; i < 50; i++ {
		universe = append(universe, contracts.SymbolRef{Code: fmt.Sprintf("%06d", i), Market: "KOSPI"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, scanDate, universe)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aborted")
}

func TestRun_EmptyUniverse(t *testing.T) {
	p := &scriptedProvider{uptrend: map[string]bool{}, broken: map[string]bool{}}
	o := newTestOrchestrator(p)

	result, err := o.Run(context.Background(), scanDate, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UniverseSize)
	assert.Equal(t, 0, result.PassedStage1)
	assert.Empty(t, result.Failures)
}
