package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/scan"
	"github.com/wonny/horizon/pkg/logger"
)

// DailyScanJob runs the full multi-horizon scan after the KR close
// ⭐ SSOT: 일일 스캔 트리거는 이 Job에서만
type DailyScanJob struct {
	orchestrator *scan.Orchestrator
	universe     contracts.UniverseProvider
	logger       *logger.Logger
}

// NewDailyScanJob creates a new daily scan job
func NewDailyScanJob(orch *scan.Orchestrator, universe contracts.UniverseProvider, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		orchestrator: orch,
		universe:     universe,
		logger:       log,
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron schedule (weekdays at 16:00 KST)
func (j *DailyScanJob) Schedule() string {
	return "0 0 16 * * 1-5"
}

// Run executes the scan for today's universe and persists the result.
func (j *DailyScanJob) Run(ctx context.Context) error {
	today := time.Now()

	refs, err := j.universe.ListSymbols(ctx, today)
	if err != nil {
		return fmt.Errorf("list universe: %w", err)
	}
	if len(refs) == 0 {
		j.logger.Warn("Empty universe, skipping scan")
		return nil
	}

	result, err := j.orchestrator.Run(ctx, today, refs)
	if err != nil {
		return fmt.Errorf("scan run: %w", err)
	}

	total := 0
	for _, n := range result.Counts {
		total += n
	}
	j.logger.WithFields(map[string]interface{}{
		"run_id":     result.RunID,
		"regime":     result.Regime.FinalRegime,
		"universe":   result.UniverseSize,
		"stage1":     result.PassedStage1,
		"candidates": total,
		"failures":   len(result.Failures),
		"duration":   result.Duration.String(),
	}).Info("Daily scan completed")

	return nil
}
