package naver

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/horizon/internal/contracts"
)

// fetchWorldBars fetches daily bars for a world index/futures symbol
// (예: NAS@IXIC, VIX@VIX) from the world index day-list page.
// 해외 지수 페이지는 JSON API가 없어 HTML 테이블을 파싱함
func (c *Client) fetchWorldBars(ctx context.Context, symbol string) (contracts.BarSeries, error) {
	bars := make(contracts.BarSeries, 0, 60)

	// 한 페이지에 약 10영업일: 최근 구간만 필요하므로 6페이지까지
	const maxPages = 6
	for page := 1; page <= maxPages; page++ {
		fullURL := fmt.Sprintf("%s/world/worldDayListJson.naver?symbol=%s&fdtc=0&page=%d",
			c.baseURL, symbol, page)

		html, err := c.fetchHTML(ctx, fullURL)
		if err != nil {
			return nil, err
		}

		pageBars, err := parseWorldDayTable(html)
		if err != nil {
			return nil, fmt.Errorf("parse world day table page %d: %w", page, err)
		}
		if len(pageBars) == 0 {
			break
		}
		bars = append(bars, pageBars...)
	}

	// 페이지는 최신순: 날짜 오름차순으로 정렬해서 반환
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	// 페이지 경계 중복 제거
	deduped := make(contracts.BarSeries, 0, len(bars))
	for _, b := range bars {
		if n := len(deduped); n > 0 && sameDate(deduped[n-1].Date, b.Date) {
			continue
		}
		deduped = append(deduped, b)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(deduped),
	}).Debug("Fetched world bars")
	return deduped, nil
}

// parseWorldDayTable parses one page of the world index daily table.
// 컬럼: 날짜 / 종가 / 전일대비 / 시가 / 고가 / 저가 / 거래량
func parseWorldDayTable(html string) (contracts.BarSeries, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	bars := make(contracts.BarSeries, 0, 10)
	doc.Find("table tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 6 {
			return
		}

		date, err := parseWorldDate(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return
		}

		closePrice := parseNumber(cells.Eq(1).Text())
		open := parseNumber(cells.Eq(3).Text())
		high := parseNumber(cells.Eq(4).Text())
		low := parseNumber(cells.Eq(5).Text())

		var volume int64
		if cells.Length() > 6 {
			volume = int64(parseNumber(cells.Eq(6).Text()))
		}

		if closePrice <= 0 {
			return
		}
		// 일부 지수는 시/고/저 미제공: 종가로 보정
		if open <= 0 {
			open = closePrice
		}
		if high <= 0 {
			high = closePrice
		}
		if low <= 0 {
			low = closePrice
		}

		bars = append(bars, contracts.Bar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	})

	return bars, nil
}

// parseWorldDate parses dates like "2026.08.28"
func parseWorldDate(s string) (time.Time, error) {
	return time.Parse("2006.01.02", s)
}

// parseNumber parses numbers like "16,745.30" (commas, optional sign)
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "+")
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
