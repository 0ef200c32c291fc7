package naver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/horizon/internal/contracts"
)

// fetchChartBars fetches daily bars from the Naver chart API (siseJson).
// 국내 종목 코드와 KOSPI/KOSDAQ 지수 심볼 모두 처리함
func (c *Client) fetchChartBars(ctx context.Context, symbol string, from, to time.Time) (contracts.BarSeries, error) {
	fromStr := from.Format("20060102")
	toStr := to.Format("20060102")

	fullURL := fmt.Sprintf(
		"%s/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		c.chartBaseURL, symbol, fromStr, toStr,
	)

	body, err := c.fetchHTML(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	bars, err := parseChartResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse chart response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched chart bars")
	return bars, nil
}

// chartRowPattern matches one data row:
// ["20240102", 2669, 2675, 2655, 2669, 403817, 52.1]
var chartRowPattern = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*(\d+)`)

// parseChartResponse parses the bracketed row format of siseJson
func parseChartResponse(body string) (contracts.BarSeries, error) {
	matches := chartRowPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		if strings.Contains(body, "날짜") {
			// 헤더만 있고 데이터 없음 (휴장 구간)
			return contracts.BarSeries{}, nil
		}
		return nil, fmt.Errorf("no data rows in response")
	}

	bars := make(contracts.BarSeries, 0, len(matches))
	for _, m := range matches {
		date, err := time.Parse("20060102", m[1])
		if err != nil {
			continue
		}

		open, _ := strconv.ParseFloat(m[2], 64)
		high, _ := strconv.ParseFloat(m[3], 64)
		low, _ := strconv.ParseFloat(m[4], 64)
		closePrice, _ := strconv.ParseFloat(m[5], 64)
		volume, _ := strconv.ParseInt(m[6], 10, 64)

		if closePrice <= 0 {
			continue
		}

		bars = append(bars, contracts.Bar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
			// 차트 API는 거래대금을 제공하지 않음: 종가×거래량으로 근사
			Value: closePrice * float64(volume),
		})
	}

	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}
