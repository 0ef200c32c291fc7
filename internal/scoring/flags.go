package scoring

import (
	"fmt"

	"github.com/wonny/horizon/internal/contracts"
)

const (
	minBarsForFlags = 60  // MA60 계산 하한
	longMAPeriod    = 120 // 장기 추세선 (이력 부족 시 해당 플래그만 미설정)
)

// ComputeFlags derives the technical flag set for one symbol
// 동일한 플래그 집합이 세 호라이즌 점수표에 모두 공급됨
func ComputeFlags(bars contracts.BarSeries) (contracts.TechFlags, error) {
	var f contracts.TechFlags

	if bars.Len() < minBarsForFlags {
		return f, fmt.Errorf("%w: need %d bars, have %d", contracts.ErrInsufficientData, minBarsForFlags, bars.Len())
	}

	last := bars.Len() - 1
	lastClose := bars[last].Close

	ma5 := movingAvg(bars, last, 5)
	ma20 := movingAvg(bars, last, 20)
	ma60 := movingAvg(bars, last, 60)

	f.CloseAboveMA5 = lastClose > ma5
	f.CloseAboveMA20 = lastClose > ma20
	f.CloseAboveMA60 = lastClose > ma60
	if bars.Len() >= longMAPeriod {
		f.CloseAboveMA120 = lastClose > movingAvg(bars, last, longMAPeriod)
	}

	f.GoldenCross = goldenCross(bars, last)
	f.MA20SlopeUp = slopeUp(bars, last, 20)
	f.MA60SlopeUp = slopeUp(bars, last, 60)
	f.VolumeExpansion = volumeExpansion(bars, last)
	f.NewHigh20D = newHigh(bars, last, 20)
	f.BreadthStrong = breadthStrong(bars, last)

	// Risk flags
	if atr, ok := atrPercent(bars, last); ok {
		f.HighATR = atr > highATRThreshold
	}
	if r5, ok := returnOver(bars, last, 5); ok {
		f.DeepPullback = r5 <= deepPullbackReturn
		f.Overheated = r5 >= overheatedReturn
	}

	return f, nil
}

// Risk flag thresholds (%)
const (
	highATRThreshold   = 5.0
	deepPullbackReturn = -10.0
	overheatedReturn   = 25.0
)

// movingAvg is the simple moving average of closes ending at index i
func movingAvg(bars contracts.BarSeries, i, period int) float64 {
	if i+1 < period {
		return 0
	}
	var sum float64
	for j := i - period + 1; j <= i; j++ {
		sum += bars[j].Close
	}
	return sum / float64(period)
}

// goldenCross reports whether MA5 crossed above MA20 within the last 3 sessions
func goldenCross(bars contracts.BarSeries, last int) bool {
	if movingAvg(bars, last, 5) <= movingAvg(bars, last, 20) {
		return false
	}
	for back := 1; back <= 3; back++ {
		i := last - back
		if i < 20 {
			return false
		}
		if movingAvg(bars, i, 5) <= movingAvg(bars, i, 20) {
			return true
		}
	}
	return false
}

// slopeUp reports whether the MA is rising over the last 3 sessions
func slopeUp(bars contracts.BarSeries, last, period int) bool {
	if last-3 < period-1 {
		return false
	}
	return movingAvg(bars, last, period) > movingAvg(bars, last-3, period)
}

// volumeExpansion reports whether today's volume exceeds 1.5x the 20-day average
func volumeExpansion(bars contracts.BarSeries, last int) bool {
	if last < 20 {
		return false
	}
	var sum float64
	for j := last - 20; j < last; j++ {
		sum += float64(bars[j].Volume)
	}
	avg := sum / 20
	return avg > 0 && float64(bars[last].Volume) >= avg*1.5
}

// newHigh reports whether today's close is the highest of the period
func newHigh(bars contracts.BarSeries, last, period int) bool {
	if last+1 < period {
		return false
	}
	for j := last - period + 1; j < last; j++ {
		if bars[j].Close >= bars[last].Close {
			return false
		}
	}
	return true
}

// breadthStrong reports whether the close held above MA20 for most of the window
// 최근 20일 중 MA20 상회 일수 비율 60% 이상
func breadthStrong(bars contracts.BarSeries, last int) bool {
	const window = 20
	if last+1 < window+20 {
		return false
	}
	above := 0
	for j := last - window + 1; j <= last; j++ {
		if bars[j].Close > movingAvg(bars, j, 20) {
			above++
		}
	}
	return float64(above)/float64(window) >= 0.6
}

// atrPercent is the 14-day ATR as percent of the last close
func atrPercent(bars contracts.BarSeries, last int) (float64, bool) {
	const period = 14
	if last < period || bars[last].Close <= 0 {
		return 0, false
	}
	var sum float64
	for j := last - period + 1; j <= last; j++ {
		hl := bars[j].High - bars[j].Low
		hc := abs(bars[j].High - bars[j-1].Close)
		lc := abs(bars[j].Low - bars[j-1].Close)
		sum += max3(hl, hc, lc)
	}
	return sum / float64(period) / bars[last].Close * 100, true
}

// returnOver is the percent return over the last n sessions
func returnOver(bars contracts.BarSeries, last, n int) (float64, bool) {
	if last < n || bars[last-n].Close <= 0 {
		return 0, false
	}
	return (bars[last].Close - bars[last-n].Close) / bars[last-n].Close * 100, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
