package contracts

import "time"

// Horizon is a trading timeframe tier
type Horizon string

const (
	HorizonSwing    Horizon = "swing"
	HorizonPosition Horizon = "position"
	HorizonLongterm Horizon = "longterm"
)

// HorizonsAll lists every horizon, for config-completeness checks
var HorizonsAll = []Horizon{HorizonSwing, HorizonPosition, HorizonLongterm}

// TechFlags is the fixed set of boolean technical conditions per symbol.
// open-ended map 대신 고정 필드: 점수표를 빠짐없이 검증 가능하게 유지
type TechFlags struct {
	CloseAboveMA5   bool `json:"close_above_ma5"`
	CloseAboveMA20  bool `json:"close_above_ma20"`
	CloseAboveMA60  bool `json:"close_above_ma60"`
	CloseAboveMA120 bool `json:"close_above_ma120"`
	GoldenCross     bool `json:"golden_cross"` // MA5가 최근 3일 내 MA20 상향 돌파
	MA20SlopeUp     bool `json:"ma20_slope_up"`
	MA60SlopeUp     bool `json:"ma60_slope_up"`
	VolumeExpansion bool `json:"volume_expansion"` // 거래량 20일 평균 대비 확대
	NewHigh20D      bool `json:"new_high_20d"`
	BreadthStrong   bool `json:"breadth_strong"` // 최근 20일 중 MA20 상회 일수 비율 상위

	// Risk flags (감점 요인)
	HighATR      bool `json:"high_atr"`      // 변동성 과다
	DeepPullback bool `json:"deep_pullback"` // 단기 급락
	Overheated   bool `json:"overheated"`    // 단기 과열
}

// ScanCandidate is one admitted symbol for one horizon
type ScanCandidate struct {
	Symbol        string    `json:"symbol"`
	Market        string    `json:"market"`
	Horizon       Horizon   `json:"horizon"`
	RawScore      float64   `json:"raw_score"`
	RiskScore     float64   `json:"risk_score"`
	AdjustedScore float64   `json:"adjusted_score"`
	Label         string    `json:"label"`         // strong-buy / buy-candidate / watch / candidate
	StrategyTier  string    `json:"strategy_tier"` // swing / position / longterm
	Flags         TechFlags `json:"flags"`
}

// ScanResult is the output of one orchestrator pass.
// 생성 후 불변: 같은 날짜의 재실행은 새 ScanResult로 대체됨
type ScanResult struct {
	Date   time.Time     `json:"date"`
	Regime *RegimeResult `json:"regime"`

	Candidates map[Horizon][]ScanCandidate `json:"candidates"`
	Counts     map[Horizon]int             `json:"counts"`

	UniverseSize int `json:"universe_size"`
	PassedStage1 int `json:"passed_stage1"`

	// Failures maps symbol -> reason for per-symbol scoring failures
	Failures map[string]string `json:"failures,omitempty"`

	RunID      string        `json:"run_id"`
	ConfigHash string        `json:"config_hash,omitempty"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// SymbolRef identifies one symbol in its market
type SymbolRef struct {
	Code   string `json:"code"`
	Market string `json:"market"`
}
