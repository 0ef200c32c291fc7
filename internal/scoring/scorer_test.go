package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/engineconfig"
	"github.com/wonny/horizon/pkg/logger"
)

// trendingBars builds n daily bars with a steady uptrend and flat volume
func trendingBars(n int, dailyGainPct float64) contracts.BarSeries {
	s := make(contracts.BarSeries, 0, n)
	d := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	price := 10_000.0
	for len(s) < n {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			s = append(s, contracts.Bar{
				Date:   d,
				Open:   price,
				High:   price * 1.01,
				Low:    price * 0.99,
				Close:  price,
				Volume: 100_000,
				Value:  price * 100_000,
			})
			price *= 1 + dailyGainPct/100
		}
		d = d.AddDate(0, 0, 1)
	}
	return s
}

func newTestScorer() *Scorer {
	return NewScorer(engineconfig.Default(), logger.Nop())
}

func TestComputeFlags_InsufficientData(t *testing.T) {
	_, err := ComputeFlags(trendingBars(40, 0.3))
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestComputeFlags_Uptrend(t *testing.T) {
	flags, err := ComputeFlags(trendingBars(130, 0.3))
	require.NoError(t, err)

	assert.True(t, flags.CloseAboveMA5)
	assert.True(t, flags.CloseAboveMA20)
	assert.True(t, flags.CloseAboveMA60)
	assert.True(t, flags.CloseAboveMA120)
	assert.True(t, flags.MA20SlopeUp)
	assert.True(t, flags.MA60SlopeUp)
	assert.True(t, flags.NewHigh20D)
	assert.True(t, flags.BreadthStrong)

	assert.False(t, flags.HighATR)
	assert.False(t, flags.DeepPullback)
	assert.False(t, flags.Overheated)
}

func TestComputeFlags_MA120NeedsHistory(t *testing.T) {
	// 60~119봉: MA120 플래그만 미설정, 나머지는 계산됨
	flags, err := ComputeFlags(trendingBars(80, 0.3))
	require.NoError(t, err)
	assert.False(t, flags.CloseAboveMA120)
	assert.True(t, flags.CloseAboveMA60)
}

func TestComputeFlags_RiskFlags(t *testing.T) {
	// 5일간 -12% 급락
	bars := trendingBars(130, 0)
	last := len(bars) - 1
	drop := bars[last-5].Close * 0.88
	for i := last - 4; i <= last; i++ {
		bars[i].Open = drop
		bars[i].High = drop * 1.01
		bars[i].Low = drop * 0.99
		bars[i].Close = drop
	}

	flags, err := ComputeFlags(bars)
	require.NoError(t, err)
	assert.True(t, flags.DeepPullback)
	assert.False(t, flags.Overheated)
}

func TestRiskScore_Penalties(t *testing.T) {
	assert.Equal(t, 0.0, riskScore(contracts.TechFlags{}))
	assert.Equal(t, 1.5, riskScore(contracts.TechFlags{HighATR: true}))
	assert.Equal(t, 5.0, riskScore(contracts.TechFlags{HighATR: true, DeepPullback: true, Overheated: true}))
}

func TestLabelLadder(t *testing.T) {
	cases := []struct {
		adjusted float64
		label    string
	}{
		{11.0, "strong-buy"},
		{10.0, "strong-buy"},
		{9.99, "buy-candidate"},
		{8.0, "buy-candidate"},
		{7.0, "watch"},
		{6.0, "watch"},
		{5.99, "candidate"},
		{-3.0, "candidate"},
	}
	for _, c := range cases {
		assert.Equal(t, c.label, labelFor(c.adjusted), "adjusted=%.2f", c.adjusted)
	}
}

func TestSelect_SingleScoreSource(t *testing.T) {
	flags := contracts.TechFlags{GoldenCross: true, MA20SlopeUp: true}

	sel := Select(9.5, flags)
	assert.Equal(t, "buy-candidate", sel.Label)
	assert.Equal(t, "swing", sel.Tier)

	sel = Select(7.0, flags)
	assert.Equal(t, "watch", sel.Label)
	assert.Equal(t, "position", sel.Tier)

	sel = Select(5.0, contracts.TechFlags{})
	assert.Equal(t, "candidate", sel.Label)
	assert.Equal(t, "longterm", sel.Tier)
}

func TestScore_RegimeGatesAdmission(t *testing.T) {
	scorer := newTestScorer()
	bars := trendingBars(130, 0.3)

	bull, err := scorer.Score("005930", "KOSPI", bars, contracts.RegimeBull)
	require.NoError(t, err)

	bear, err := scorer.Score("005930", "KOSPI", bars, contracts.RegimeBear)
	require.NoError(t, err)

	// 약세장에서는 스윙 진입 차단 (cutoff 999)
	for _, c := range bear {
		assert.NotEqual(t, contracts.HorizonSwing, c.Horizon)
	}
	assert.GreaterOrEqual(t, len(bull), len(bear))

	// 폭락장에서는 전 호라이즌 차단
	crash, err := scorer.Score("005930", "KOSPI", bars, contracts.RegimeCrash)
	require.NoError(t, err)
	assert.Empty(t, crash)
}

func TestScore_LabelAndTierFromAdjustedScore(t *testing.T) {
	scorer := newTestScorer()
	bars := trendingBars(130, 0.3)

	candidates, err := scorer.Score("005930", "KOSPI", bars, contracts.RegimeNeutral)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	for _, c := range candidates {
		assert.Equal(t, c.RawScore-c.RiskScore, c.AdjustedScore)
		assert.Equal(t, labelFor(c.AdjustedScore), c.Label)
		assert.Equal(t, tierFor(c.AdjustedScore, c.Flags), c.StrategyTier)
	}
}

func TestRankAndCap_Ordering(t *testing.T) {
	scorer := newTestScorer()

	mk := func(symbol string, adjusted, risk float64) contracts.ScanCandidate {
		return contracts.ScanCandidate{
			Symbol: symbol, Horizon: contracts.HorizonPosition,
			AdjustedScore: adjusted, RiskScore: risk,
		}
	}

	input := map[contracts.Horizon][]contracts.ScanCandidate{
		contracts.HorizonPosition: {
			mk("C", 7.0, 1.5),
			mk("B", 7.0, 0.0),
			mk("A", 9.0, 0.0),
			mk("E", 7.0, 0.0),
			mk("D", 8.0, 2.0),
		},
	}

	ranked := scorer.RankAndCap(input)
	got := make([]string, 0)
	for _, c := range ranked[contracts.HorizonPosition] {
		got = append(got, c.Symbol)
	}

	// adjusted 내림차순 → risk 오름차순 → 심볼 오름차순
	assert.Equal(t, []string{"A", "D", "B", "E", "C"}, got)
}

func TestRankAndCap_CapAfterRanking(t *testing.T) {
	scorer := newTestScorer()

	// 상한(10)보다 많은 후보: 컷은 정렬 후 적용되어야 함
	input := map[contracts.Horizon][]contracts.ScanCandidate{
		contracts.HorizonSwing: {},
	}
	for i := 0; i < 15; i++ {
		input[contracts.HorizonSwing] = append(input[contracts.HorizonSwing], contracts.ScanCandidate{
			Symbol:        fmt.Sprintf("%06d", i),
			Horizon:       contracts.HorizonSwing,
			AdjustedScore: float64(i), // 나중 심볼일수록 점수 높음
		})
	}

	ranked := scorer.RankAndCap(input)
	swing := ranked[contracts.HorizonSwing]
	require.Len(t, swing, 10)

	// 선두는 최고 점수여야 함 (입력 순서가 아니라)
	assert.Equal(t, 14.0, swing[0].AdjustedScore)
	assert.Equal(t, 5.0, swing[9].AdjustedScore)
}
