package regime

import (
	"math"
	"time"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/engineconfig"
)

// defaultedMetrics is the neutral substitute for an unavailable source
// 부분 결측 시 하드 실패 대신 중립/0점으로 대체하고 기록만 남김
func defaultedMetrics() contracts.SourceMetrics {
	return contracts.SourceMetrics{
		Label:     contracts.SourceNeutral,
		Score:     0,
		Defaulted: true,
	}
}

// deriveMetrics computes one source's sentiment snapshot from its bar series.
// refBar: 해당 소스의 기준 바, prevClose: 직전 종가 (수익률 분모)
func deriveMetrics(src engineconfig.Source, series contracts.BarSeries, refIdx int) contracts.SourceMetrics {
	if refIdx <= 0 || refIdx >= series.Len() {
		return defaultedMetrics()
	}

	ref := series[refIdx]
	prev := series[refIdx-1]
	if prev.Close <= 0 || ref.Open <= 0 {
		return defaultedMetrics()
	}

	ret := (ref.Close - prev.Close) / prev.Close * 100
	vol := (ref.High - ref.Low) / ref.Open * 100

	m := contracts.SourceMetrics{
		Return:     ret,
		Volatility: vol,
		Breadth:    breadthRatio(series[:refIdx+1]),
		Score:      clamp(ret*src.ScoreScale, -10, 10),
	}

	switch {
	case ret >= src.BullishMin:
		m.Label = contracts.SourceBullish
	case ret <= src.BearishMax:
		m.Label = contracts.SourceBearish
	default:
		m.Label = contracts.SourceNeutral
	}
	return m
}

// breadthRatio is the fraction of up-sessions over the recent window
// 추세 지속 정도의 근사치로 사용
func breadthRatio(series contracts.BarSeries) float64 {
	const window = 10
	tail := series.TailN(window + 1)
	if tail.Len() < 2 {
		return 0
	}
	up := 0
	for i := 1; i < tail.Len(); i++ {
		if tail[i].Close > tail[i-1].Close {
			up++
		}
	}
	return float64(up) / float64(tail.Len()-1)
}

// intradayDrawdown is the session's fall from its high, in percent (negative)
func intradayDrawdown(b contracts.Bar) float64 {
	if b.High <= 0 {
		return 0
	}
	return (b.Low - b.High) / b.High * 100
}

// indexAt finds the index of the bar exactly on the date, or -1
func indexAt(series contracts.BarSeries, date time.Time) int {
	for i := series.Len() - 1; i >= 0; i-- {
		if sameDay(series[i].Date, date) {
			return i
		}
		if series[i].Date.Before(date) {
			break
		}
	}
	return -1
}

// indexBefore finds the index of the last bar strictly before the date, or -1
func indexBefore(series contracts.BarSeries, date time.Time) int {
	for i := series.Len() - 1; i >= 0; i-- {
		if series[i].Date.Before(date) {
			return i
		}
	}
	return -1
}

// indexAtOrBefore finds the index of the last bar on or before the date, or -1
func indexAtOrBefore(series contracts.BarSeries, date time.Time) int {
	for i := series.Len() - 1; i >= 0; i-- {
		if sameDay(series[i].Date, date) || series[i].Date.Before(date) {
			return i
		}
	}
	return -1
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
