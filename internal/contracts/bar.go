package contracts

import (
	"fmt"
	"time"
)

// Bar is a single daily OHLCV bar
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	Value  float64   `json:"value"` // 거래대금 (원)
}

// BarSeries is an ordered sequence of daily bars for one symbol
// 날짜 오름차순, 중복 날짜 없음, append-only
type BarSeries []Bar

// Len returns the number of bars
func (s BarSeries) Len() int {
	return len(s)
}

// Last returns the most recent bar
func (s BarSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// LastDate returns the date of the most recent bar (zero time if empty)
func (s BarSeries) LastDate() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Date
}

// Append appends bars to the series, enforcing the append-only invariant.
// 기존 마지막 날짜 이전/동일 날짜의 바는 거부함
func (s BarSeries) Append(bars ...Bar) (BarSeries, error) {
	out := s
	for _, b := range bars {
		if last := out.LastDate(); !last.IsZero() && !b.Date.After(last) {
			return s, fmt.Errorf("bar date %s is not after last cached date %s",
				b.Date.Format("2006-01-02"), last.Format("2006-01-02"))
		}
		out = append(out, b)
	}
	return out, nil
}

// Clone returns a copy of the series
func (s BarSeries) Clone() BarSeries {
	if s == nil {
		return nil
	}
	out := make(BarSeries, len(s))
	copy(out, s)
	return out
}

// TailN returns the last n bars (or the whole series if shorter)
func (s BarSeries) TailN(n int) BarSeries {
	if n <= 0 || len(s) == 0 {
		return BarSeries{}
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Closes returns closing prices in series order
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Validate checks the ordering and duplicate-date invariants
func (s BarSeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return fmt.Errorf("bars out of order at index %d: %s >= %s",
				i, s[i-1].Date.Format("2006-01-02"), s[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}
