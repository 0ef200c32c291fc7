package screening

import (
	"math"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/engineconfig"
	"github.com/wonny/horizon/pkg/logger"
)

const (
	atrPeriod      = 14
	turnoverPeriod = 20
)

// Stage1 is the loose tradability pre-filter
// ⭐ SSOT: 스테이지1 스크리닝 로직은 여기서만
//
// 의도적으로 느슨함: 최근 구간에서 단 하루라도 조건을 동시에 충족하면 통과.
// 목적은 명백히 죽은/비유동 종목을 스코어링 전에 걷어내는 것뿐
type Stage1 struct {
	config engineconfig.Stage1
	logger *logger.Logger
}

// New creates a new Stage 1 filter
func New(config engineconfig.Stage1, log *logger.Logger) *Stage1 {
	return &Stage1{
		config: config,
		logger: log,
	}
}

// Passes reports whether a symbol survives the tradability screen.
// Returns the fail reason for observability (empty when passed)
func (s *Stage1) Passes(symbol string, bars contracts.BarSeries) (bool, string) {
	// ATR 계산 불가 = 변동성 평가 불가 → fail-closed
	if bars.Len() < atrPeriod+1 {
		return false, "insufficient history for ATR"
	}
	if bars.Len() < turnoverPeriod {
		return false, "insufficient history for turnover"
	}

	window := s.config.Window
	if window > bars.Len() {
		window = bars.Len()
	}

	for i := bars.Len() - window; i < bars.Len(); i++ {
		if s.sessionQualifies(bars, i) {
			return true, ""
		}
	}
	return false, "no qualifying session in window"
}

// sessionQualifies checks one session against all three floors simultaneously
func (s *Stage1) sessionQualifies(bars contracts.BarSeries, i int) bool {
	if bars[i].Close < s.config.PriceFloor {
		return false
	}

	turnover, ok := avgTurnoverAt(bars, i, turnoverPeriod)
	if !ok || turnover < s.config.TurnoverFloor {
		return false
	}

	atr, ok := atrPercentAt(bars, i, atrPeriod)
	if !ok {
		return false
	}
	return atr >= s.config.ATRMin && atr <= s.config.ATRMax
}

// avgTurnoverAt is the average trading value over the period ending at index i
func avgTurnoverAt(bars contracts.BarSeries, i, period int) (float64, bool) {
	if i+1 < period {
		return 0, false
	}
	var sum float64
	for j := i - period + 1; j <= i; j++ {
		v := bars[j].Value
		if v <= 0 {
			// 거래대금 미제공 소스는 종가×거래량으로 근사
			v = bars[j].Close * float64(bars[j].Volume)
		}
		sum += v
	}
	return sum / float64(period), true
}

// atrPercentAt is the ATR over the period ending at index i, as percent of close
func atrPercentAt(bars contracts.BarSeries, i, period int) (float64, bool) {
	if i < period || bars[i].Close <= 0 {
		return 0, false
	}

	var sum float64
	for j := i - period + 1; j <= i; j++ {
		tr := trueRange(bars[j], bars[j-1])
		sum += tr
	}
	atr := sum / float64(period)
	return atr / bars[i].Close * 100, true
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|)
func trueRange(cur, prev contracts.Bar) float64 {
	hl := cur.High - cur.Low
	hc := math.Abs(cur.High - prev.Close)
	lc := math.Abs(cur.Low - prev.Close)
	return math.Max(hl, math.Max(hc, lc))
}
