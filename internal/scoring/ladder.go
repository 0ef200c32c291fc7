package scoring

import (
	"math"

	"github.com/wonny/horizon/internal/contracts"
)

// ladderStep is one rung of an ordered threshold ladder.
// 위에서 아래로 평가, 첫 매치 승 — 타이브레이크 정책을 표로 감사 가능하게 유지
type ladderStep struct {
	Min   float64
	Value string
}

// labelLadder maps the final adjusted score to a candidate label
var labelLadder = []ladderStep{
	{10.0, "strong-buy"},
	{8.0, "buy-candidate"},
	{6.0, "watch"},
	{math.Inf(-1), "candidate"},
}

// Selection is the label/tier pair derived from one single score value
type Selection struct {
	Label string
	Tier  string
}

// Select derives label and strategy tier from the SAME final adjusted score.
// 라벨과 전략 티어가 서로 다른 시점의 점수를 보면 불일치가 생기므로
// 반드시 하나의 최종 점수에서 한 번에 파생시킴
func Select(adjusted float64, flags contracts.TechFlags) Selection {
	return Selection{
		Label: labelFor(adjusted),
		Tier:  tierFor(adjusted, flags),
	}
}

// labelFor walks the label ladder top-down, first match wins
func labelFor(adjusted float64) string {
	for _, step := range labelLadder {
		if adjusted >= step.Min {
			return step.Value
		}
	}
	return labelLadder[len(labelLadder)-1].Value
}

// tierFor selects the recommended strategy tier from the same adjusted score
// and the flag set, top-down, first match wins
func tierFor(adjusted float64, flags contracts.TechFlags) string {
	switch {
	case adjusted >= 9.0 && (flags.GoldenCross || flags.VolumeExpansion):
		return string(contracts.HorizonSwing)
	case adjusted >= 6.5 && flags.MA20SlopeUp:
		return string(contracts.HorizonPosition)
	default:
		return string(contracts.HorizonLongterm)
	}
}
