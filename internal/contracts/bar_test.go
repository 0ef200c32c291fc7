package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestBarSeries_Append(t *testing.T) {
	s := BarSeries{}

	s, err := s.Append(
		Bar{Date: day(2026, 8, 24), Close: 100},
		Bar{Date: day(2026, 8, 25), Close: 101},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, day(2026, 8, 25), s.LastDate())

	// 같은 날짜 추가는 거부
	_, err = s.Append(Bar{Date: day(2026, 8, 25), Close: 102})
	assert.Error(t, err)

	// 과거 날짜 추가도 거부
	_, err = s.Append(Bar{Date: day(2026, 8, 20), Close: 99})
	assert.Error(t, err)

	// 실패해도 원본은 그대로
	assert.Equal(t, 2, s.Len())
}

func TestBarSeries_AppendRejectsWholeBatch(t *testing.T) {
	s := BarSeries{{Date: day(2026, 8, 24), Close: 100}}

	// 배치 중간에 역행 날짜가 있으면 전체 거부
	out, err := s.Append(
		Bar{Date: day(2026, 8, 25), Close: 101},
		Bar{Date: day(2026, 8, 25), Close: 101},
	)
	require.Error(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestBarSeries_CloneIsIndependent(t *testing.T) {
	s := BarSeries{{Date: day(2026, 8, 24), Close: 100}}
	c := s.Clone()

	c[0].Close = 999
	assert.Equal(t, 100.0, s[0].Close)
}

func TestBarSeries_TailN(t *testing.T) {
	s := BarSeries{
		{Date: day(2026, 8, 24)},
		{Date: day(2026, 8, 25)},
		{Date: day(2026, 8, 26)},
	}

	assert.Equal(t, 2, s.TailN(2).Len())
	assert.Equal(t, day(2026, 8, 26), s.TailN(2).LastDate())
	assert.Equal(t, 3, s.TailN(10).Len())
	assert.Equal(t, 0, s.TailN(0).Len())
}

func TestBarSeries_Validate(t *testing.T) {
	ok := BarSeries{
		{Date: day(2026, 8, 24)},
		{Date: day(2026, 8, 25)},
	}
	assert.NoError(t, ok.Validate())

	dup := BarSeries{
		{Date: day(2026, 8, 24)},
		{Date: day(2026, 8, 24)},
	}
	assert.Error(t, dup.Validate())
}
