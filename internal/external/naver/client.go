package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/pkg/config"
	"github.com/wonny/horizon/pkg/httputil"
	"github.com/wonny/horizon/pkg/logger"
	"github.com/wonny/horizon/pkg/redis"
)

// Markets the provider understands
const (
	MarketKOSPI  = "KOSPI"
	MarketKOSDAQ = "KOSDAQ"
	MarketIndex  = "index" // 국내 지수 (KOSPI/KOSDAQ 지수 자체)
	MarketWorld  = "world" // 해외 지수/선물/변동성 지수
)

// Client fetches daily bars from Naver Finance
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	baseURL      string
	chartBaseURL string
	limiter      *rate.Limiter
	ratePerSec   float64

	// shared coordinates the rate limit across processes, nil이면 로컬만 사용
	shared *redis.RateLimiter
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, cfg config.NaverConfig, log *logger.Logger) *Client {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		httpClient:   httpClient,
		logger:       log,
		baseURL:      cfg.BaseURL,
		chartBaseURL: cfg.ChartBaseURL,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		ratePerSec:   rps,
	}
}

// SetSharedLimiter enables the Redis-backed distributed rate limit.
func (c *Client) SetSharedLimiter(rl *redis.RateLimiter) {
	c.shared = rl
}

var _ contracts.BarProvider = (*Client)(nil)

// FetchBars implements contracts.BarProvider.
// market에 따라 차트 API(국내 종목/지수) 또는 해외 지수 페이지로 분기
func (c *Client) FetchBars(ctx context.Context, symbol, market string, from, to time.Time) (contracts.BarSeries, error) {
	// 소스 측 과부하 방지: 클라이언트 레이트 리밋
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", contracts.ErrDataUnavailable, err)
	}
	if err := c.waitShared(ctx); err != nil {
		return nil, err
	}

	var (
		bars contracts.BarSeries
		err  error
	)
	switch market {
	case MarketWorld:
		bars, err = c.fetchWorldBars(ctx, symbol)
	default:
		// 국내 종목과 지수는 같은 차트 API가 처리함
		bars, err = c.fetchChartBars(ctx, symbol, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDataUnavailable, err)
	}

	return filterRange(bars, from, to), nil
}

// waitShared blocks until the distributed rate limit admits a request.
// Redis 장애 시 로컬 리미터만으로 계속 진행함
func (c *Client) waitShared(ctx context.Context) error {
	if c.shared == nil {
		return nil
	}

	cfg := redis.RateLimitConfig{
		Key:    "naver",
		Limit:  int(c.ratePerSec),
		Window: time.Second,
	}
	for {
		allowed, _, err := c.shared.Allow(ctx, cfg)
		if err != nil {
			c.logger.WithError(err).Warn("Shared rate limit check failed, using local limit only")
			return nil
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: rate limiter: %v", contracts.ErrDataUnavailable, ctx.Err())
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// fetchHTML fetches an HTML page from Naver Finance
func (c *Client) fetchHTML(ctx context.Context, fullURL string) (string, error) {
	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Referer":    "https://finance.naver.com/",
	})
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body failed: %w", err)
	}
	return string(body), nil
}

// filterRange keeps bars within [from, to], preserving ascending order
func filterRange(bars contracts.BarSeries, from, to time.Time) contracts.BarSeries {
	out := make(contracts.BarSeries, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
