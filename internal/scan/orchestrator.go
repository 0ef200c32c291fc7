package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/horizon/internal/barcache"
	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/engineconfig"
	"github.com/wonny/horizon/internal/regime"
	"github.com/wonny/horizon/internal/screening"
	"github.com/wonny/horizon/internal/scoring"
	"github.com/wonny/horizon/pkg/logger"
)

// Orchestrator composes regime classification, Stage 1 and scoring into one run
// ⭐ SSOT: 스캔 파이프라인 조율은 여기서만
type Orchestrator struct {
	cache    *barcache.Manager
	analyzer *regime.Analyzer
	stage1   *screening.Stage1
	scorer   *scoring.Scorer
	config   *engineconfig.Config
	store    contracts.ScanStore // optional
	logger   *logger.Logger
}

// NewOrchestrator creates a new scan orchestrator.
// config는 호출 전에 engineconfig.Validate()를 통과했어야 함
func NewOrchestrator(
	cache *barcache.Manager,
	analyzer *regime.Analyzer,
	stage1 *screening.Stage1,
	scorer *scoring.Scorer,
	config *engineconfig.Config,
	store contracts.ScanStore,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		cache:    cache,
		analyzer: analyzer,
		stage1:   stage1,
		scorer:   scorer,
		config:   config,
		store:    store,
		logger:   log,
	}
}

// symbolOutcome is one symbol's result from the worker pool
type symbolOutcome struct {
	symbol     string
	candidates []contracts.ScanCandidate
	passed     bool
	failReason string
}

// Run executes one full scan pass for a date.
// 종목 하나의 실패는 로깅 후 제외될 뿐 배치를 중단시키지 않음.
// 취소는 종목 경계에서 협조적으로 확인됨 (캐시 커밋은 원자적)
func (o *Orchestrator) Run(ctx context.Context, date time.Time, universe []contracts.SymbolRef) (*contracts.ScanResult, error) {
	startTime := time.Now()

	regimeResult, err := o.analyzer.Classify(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("classify regime: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"universe": len(universe),
		"regime":   string(regimeResult.FinalRegime),
		"workers":  o.config.Scan.Workers,
	}).Info("Starting scan run")

	outcomes := o.scoreUniverse(ctx, date, universe, regimeResult.FinalRegime)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan aborted: %w", err)
	}

	result := o.assemble(date, regimeResult, universe, outcomes)
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"stage1":   result.PassedStage1,
		"counts":   result.Counts,
		"failures": len(result.Failures),
		"duration": result.Duration.String(),
	}).Info("Scan run completed")

	if o.store != nil {
		if err := o.store.SaveRegimeResult(ctx, regimeResult); err != nil {
			o.logger.WithError(err).Warn("Failed to persist regime result")
		}
		if err := o.store.SaveScanResult(ctx, result); err != nil {
			o.logger.WithError(err).Warn("Failed to persist scan result")
		}
	}

	return result, nil
}

// scoreUniverse runs Stage 1 + scoring across the universe with a worker pool.
// 종목별 스코어링은 독립적·읽기 전용이므로 워커 수만큼 병렬화함
func (o *Orchestrator) scoreUniverse(ctx context.Context, date time.Time, universe []contracts.SymbolRef, finalRegime contracts.Regime) []symbolOutcome {
	symbolCh := make(chan contracts.SymbolRef, len(universe))
	resultCh := make(chan symbolOutcome, len(universe))

	var wg sync.WaitGroup
	for i := 0; i < o.config.Scan.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			o.worker(ctx, workerID, date, finalRegime, symbolCh, resultCh)
		}(i)
	}

	for _, ref := range universe {
		symbolCh <- ref
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outcomes := make([]symbolOutcome, 0, len(universe))
	for outcome := range resultCh {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// worker processes symbols until the channel closes or the context is canceled
func (o *Orchestrator) worker(ctx context.Context, workerID int, date time.Time, finalRegime contracts.Regime, symbolCh <-chan contracts.SymbolRef, resultCh chan<- symbolOutcome) {
	for ref := range symbolCh {
		// 종목 경계에서 취소 확인
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := o.scoreSymbol(ctx, date, ref, finalRegime)
		if outcome.failReason != "" {
			o.logger.WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": ref.Code,
				"reason": outcome.failReason,
			}).Warn("Symbol excluded from scan")
		}
		resultCh <- outcome
	}
}

// scoreSymbol runs the per-symbol pipeline: bars → Stage 1 → horizon scoring
func (o *Orchestrator) scoreSymbol(ctx context.Context, date time.Time, ref contracts.SymbolRef, finalRegime contracts.Regime) symbolOutcome {
	outcome := symbolOutcome{symbol: ref.Code}

	bars, err := o.cache.GetOrUpdate(ctx, ref.Code, ref.Market, date)
	if err != nil {
		outcome.failReason = err.Error()
		return outcome
	}

	if ok, reason := o.stage1.Passes(ref.Code, bars); !ok {
		// 스테이지1 탈락은 실패가 아니라 정상 제외
		o.logger.WithFields(map[string]interface{}{
			"symbol": ref.Code,
			"reason": reason,
		}).Debug("Stage 1 rejected")
		return outcome
	}
	outcome.passed = true

	candidates, err := o.scorer.Score(ref.Code, ref.Market, bars, finalRegime)
	if err != nil {
		if errors.Is(err, contracts.ErrInsufficientData) {
			// 지표 이력 부족: 조용히 제외
			outcome.passed = false
			return outcome
		}
		scoringErr := &contracts.SymbolScoringError{Symbol: ref.Code, Err: err}
		outcome.failReason = scoringErr.Error()
		return outcome
	}

	outcome.candidates = candidates
	return outcome
}

// assemble builds the final immutable ScanResult from per-symbol outcomes
func (o *Orchestrator) assemble(date time.Time, regimeResult *contracts.RegimeResult, universe []contracts.SymbolRef, outcomes []symbolOutcome) *contracts.ScanResult {
	byHorizon := make(map[contracts.Horizon][]contracts.ScanCandidate)
	failures := make(map[string]string)
	passed := 0

	for _, outcome := range outcomes {
		if outcome.failReason != "" {
			failures[outcome.symbol] = outcome.failReason
			continue
		}
		if outcome.passed {
			passed++
		}
		for _, c := range outcome.candidates {
			byHorizon[c.Horizon] = append(byHorizon[c.Horizon], c)
		}
	}

	ranked := o.scorer.RankAndCap(byHorizon)

	counts := make(map[contracts.Horizon]int, len(ranked))
	for horizon, list := range ranked {
		counts[horizon] = len(list)
	}

	configHash, err := engineconfig.Hash(o.config)
	if err != nil {
		configHash = ""
	}

	return &contracts.ScanResult{
		Date:         date,
		Regime:       regimeResult,
		Candidates:   ranked,
		Counts:       counts,
		UniverseSize: len(universe),
		PassedStage1: passed,
		Failures:     failures,
		RunID:        fmt.Sprintf("scan_%s_%d", date.Format("20060102"), time.Now().UnixNano()),
		ConfigHash:   configHash,
		CreatedAt:    time.Now(),
	}
}
