package scoring

import (
	"sort"

	"github.com/wonny/horizon/internal/contracts"
)

// RankAndCap orders each horizon's candidates and truncates to the cap.
// 정렬은 전순서: adjusted 내림차순 → risk 오름차순 → 심볼 오름차순.
// 컷은 반드시 정렬 후에: 정렬 전 컷은 유니버스 순서 편향을 만듦
func (s *Scorer) RankAndCap(byHorizon map[contracts.Horizon][]contracts.ScanCandidate) map[contracts.Horizon][]contracts.ScanCandidate {
	out := make(map[contracts.Horizon][]contracts.ScanCandidate, len(byHorizon))

	for horizon, candidates := range byHorizon {
		ranked := make([]contracts.ScanCandidate, len(candidates))
		copy(ranked, candidates)

		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].AdjustedScore != ranked[j].AdjustedScore {
				return ranked[i].AdjustedScore > ranked[j].AdjustedScore
			}
			if ranked[i].RiskScore != ranked[j].RiskScore {
				return ranked[i].RiskScore < ranked[j].RiskScore
			}
			return ranked[i].Symbol < ranked[j].Symbol
		})

		if limit := s.config.Cap(horizon); len(ranked) > limit {
			ranked = ranked[:limit]
		}
		out[horizon] = ranked
	}

	return out
}
