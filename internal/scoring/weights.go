package scoring

import "github.com/wonny/horizon/internal/contracts"

// FlagWeights is the additive point table for one horizon.
// 플래그 하나당 고정 가중치: 충족된 플래그 가중치의 단순 합이 raw score
type FlagWeights struct {
	CloseAboveMA5   float64
	CloseAboveMA20  float64
	CloseAboveMA60  float64
	CloseAboveMA120 float64
	GoldenCross     float64
	MA20SlopeUp     float64
	MA60SlopeUp     float64
	VolumeExpansion float64
	NewHigh20D      float64
	BreadthStrong   float64
}

// Apply sums the weights of the satisfied flags
func (w FlagWeights) Apply(f contracts.TechFlags) float64 {
	var score float64
	if f.CloseAboveMA5 {
		score += w.CloseAboveMA5
	}
	if f.CloseAboveMA20 {
		score += w.CloseAboveMA20
	}
	if f.CloseAboveMA60 {
		score += w.CloseAboveMA60
	}
	if f.CloseAboveMA120 {
		score += w.CloseAboveMA120
	}
	if f.GoldenCross {
		score += w.GoldenCross
	}
	if f.MA20SlopeUp {
		score += w.MA20SlopeUp
	}
	if f.MA60SlopeUp {
		score += w.MA60SlopeUp
	}
	if f.VolumeExpansion {
		score += w.VolumeExpansion
	}
	if f.NewHigh20D {
		score += w.NewHigh20D
	}
	if f.BreadthStrong {
		score += w.BreadthStrong
	}
	return score
}

// horizonWeights is the per-horizon point scheme over the shared flag set
// 호라이즌 성격에 따라 같은 플래그에 다른 가중치를 부여함
var horizonWeights = map[contracts.Horizon]FlagWeights{
	// 스윙: 단기 돌파/수급 신호 위주
	contracts.HorizonSwing: {
		CloseAboveMA5:   1.0,
		CloseAboveMA20:  1.5,
		CloseAboveMA60:  0.5,
		GoldenCross:     2.5,
		MA20SlopeUp:     1.5,
		VolumeExpansion: 2.0,
		NewHigh20D:      2.0,
		BreadthStrong:   1.0,
	},
	// 포지션: 중기 추세 정렬 위주
	contracts.HorizonPosition: {
		CloseAboveMA5:   0.5,
		CloseAboveMA20:  2.0,
		CloseAboveMA60:  2.0,
		CloseAboveMA120: 1.0,
		GoldenCross:     1.0,
		MA20SlopeUp:     2.0,
		MA60SlopeUp:     1.5,
		VolumeExpansion: 1.0,
		NewHigh20D:      0.5,
		BreadthStrong:   1.5,
	},
	// 장기: 장기 추세선과 추세 지속성 위주
	contracts.HorizonLongterm: {
		CloseAboveMA20:  1.0,
		CloseAboveMA60:  2.0,
		CloseAboveMA120: 3.0,
		MA20SlopeUp:     1.0,
		MA60SlopeUp:     2.5,
		NewHigh20D:      0.5,
		BreadthStrong:   1.5,
	},
}

// Risk penalties (non-negative, subtracted from raw score)
const (
	penaltyHighATR      = 1.5
	penaltyDeepPullback = 2.0
	penaltyOverheated   = 1.5
)

// riskScore is the symbol's volatility/drawdown penalty
func riskScore(f contracts.TechFlags) float64 {
	var penalty float64
	if f.HighATR {
		penalty += penaltyHighATR
	}
	if f.DeepPullback {
		penalty += penaltyDeepPullback
	}
	if f.Overheated {
		penalty += penaltyOverheated
	}
	return penalty
}
