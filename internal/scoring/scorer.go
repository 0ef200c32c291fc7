package scoring

import (
	"fmt"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/engineconfig"
	"github.com/wonny/horizon/pkg/logger"
)

// Scorer computes per-horizon scores and applies regime-gated admission
// ⭐ SSOT: 호라이즌 점수화와 진입 판정은 여기서만
type Scorer struct {
	config *engineconfig.Config
	logger *logger.Logger
}

// NewScorer creates a new scorer
func NewScorer(config *engineconfig.Config, log *logger.Logger) *Scorer {
	return &Scorer{
		config: config,
		logger: log,
	}
}

// Score evaluates one symbol against all three horizons.
// 반환: 레짐 컷오프를 통과한 호라이즌의 후보만.
// 레짐은 종목별 피처가 아니라 전역 스로틀: 컷오프 테이블로만 작용함
func (s *Scorer) Score(symbol, market string, bars contracts.BarSeries, regime contracts.Regime) ([]contracts.ScanCandidate, error) {
	flags, err := ComputeFlags(bars)
	if err != nil {
		return nil, fmt.Errorf("compute flags for %s: %w", symbol, err)
	}

	risk := riskScore(flags)

	candidates := make([]contracts.ScanCandidate, 0, len(contracts.HorizonsAll))
	for _, horizon := range contracts.HorizonsAll {
		raw := horizonWeights[horizon].Apply(flags)
		adjusted := raw - risk

		cutoff := s.config.Cutoff(regime, horizon)
		if adjusted < cutoff {
			continue
		}

		// 라벨과 전략 티어는 최종 adjusted score 하나에서만 파생
		sel := Select(adjusted, flags)

		candidates = append(candidates, contracts.ScanCandidate{
			Symbol:        symbol,
			Market:        market,
			Horizon:       horizon,
			RawScore:      raw,
			RiskScore:     risk,
			AdjustedScore: adjusted,
			Label:         sel.Label,
			StrategyTier:  sel.Tier,
			Flags:         flags,
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"regime":   string(regime),
		"risk":     risk,
		"admitted": len(candidates),
	}).Debug("Scored symbol")

	return candidates, nil
}
