package contracts

import "time"

// Regime is the coarse market-wide classification
// 시장 전체 국면: 어떤 매매 호라이즌을 열어둘지 결정함
type Regime string

const (
	RegimeBull    Regime = "bull"
	RegimeNeutral Regime = "neutral"
	RegimeBear    Regime = "bear"
	RegimeCrash   Regime = "crash"
)

// Regimes lists every regime, for config-completeness checks
var Regimes = []Regime{RegimeBull, RegimeNeutral, RegimeBear, RegimeCrash}

// SourceLabel is the per-source sentiment classification
type SourceLabel string

const (
	SourceBullish SourceLabel = "bullish"
	SourceNeutral SourceLabel = "neutral"
	SourceBearish SourceLabel = "bearish"
	SourceNone    SourceLabel = "none"
)

// PreOpenSignal is the US pre-market warning band
type PreOpenSignal string

const (
	PreOpenCalm   PreOpenSignal = "calm"
	PreOpenWatch  PreOpenSignal = "watch"
	PreOpenDanger PreOpenSignal = "danger"
	PreOpenNone   PreOpenSignal = "none"
)

// Source names used in RegimeResult.DefaultedSources
const (
	SourceKR        = "kr_session"
	SourceUSPrev    = "us_prev_close"
	SourceUSFutures = "us_futures"
)

// SourceMetrics is one sentiment source's derived snapshot for a date
type SourceMetrics struct {
	Label      SourceLabel `json:"label"`
	Score      float64     `json:"score"`
	Return     float64     `json:"return"`     // 수익률 (%)
	Volatility float64     `json:"volatility"` // 당일 변동폭 (%)
	Breadth    float64     `json:"breadth"`    // 추세 지속 정도 (MA 상회 일수 비율)
	Defaulted  bool        `json:"defaulted"`  // 소스 결측으로 중립 대체됨
}

// RegimeResult is the composite market regime for one date.
// 마감된 거래일에 대해서는 불변, 당일에 대해서는 장중 재계산 대상
type RegimeResult struct {
	Date time.Time `json:"date"`

	KR        SourceMetrics `json:"kr"`
	USPrev    SourceMetrics `json:"us_prev"`
	USFutures SourceMetrics `json:"us_futures"`

	PreOpen PreOpenSignal `json:"pre_open"`

	FinalRegime Regime  `json:"final_regime"`
	FinalScore  float64 `json:"final_score"`

	// CrashReason is set when the crash override fired
	CrashReason string `json:"crash_reason,omitempty"`

	// DefaultedSources records sources replaced with the neutral default
	DefaultedSources []string `json:"defaulted_sources,omitempty"`

	ComputedAt time.Time `json:"computed_at"`
}

// Degraded reports whether any source was defaulted
func (r *RegimeResult) Degraded() bool {
	return len(r.DefaultedSources) > 0
}
