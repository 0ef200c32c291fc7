package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/horizon/internal/barcache"
	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/pkg/logger"
)

// CacheRefreshJob pre-warms the bar cache for the scanning universe
// ⭐ SSOT: 주기적 캐시 갱신 스케줄은 이 Job에서만
type CacheRefreshJob struct {
	cache    *barcache.Manager
	universe contracts.UniverseProvider
	logger   *logger.Logger
}

// NewCacheRefreshJob creates a new cache refresh job
func NewCacheRefreshJob(cache *barcache.Manager, universe contracts.UniverseProvider, log *logger.Logger) *CacheRefreshJob {
	return &CacheRefreshJob{
		cache:    cache,
		universe: universe,
		logger:   log,
	}
}

// Name returns the job name
func (j *CacheRefreshJob) Name() string {
	return "cache_refresh"
}

// Schedule returns the cron schedule (weekdays at 15:40 KST, after close)
func (j *CacheRefreshJob) Schedule() string {
	return "0 40 15 * * 1-5"
}

// Run refreshes the cache for every symbol in the universe.
// 개별 종목 실패는 건너뛰고 다음 주기에 재시도됨
func (j *CacheRefreshJob) Run(ctx context.Context) error {
	today := time.Now()

	refs, err := j.universe.ListSymbols(ctx, today)
	if err != nil {
		return fmt.Errorf("list universe: %w", err)
	}

	j.logger.WithField("symbols", len(refs)).Info("Starting cache refresh")

	failed := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := j.cache.GetOrUpdate(ctx, ref.Code, ref.Market, today); err != nil {
			failed++
		}
	}

	stats := j.cache.Stats()
	j.logger.WithFields(map[string]interface{}{
		"symbols": len(refs),
		"failed":  failed,
		"entries": stats.EntryCount,
		"bars":    stats.TotalBars,
	}).Info("Cache refresh completed")

	return nil
}
