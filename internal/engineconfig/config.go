package engineconfig

import (
	"github.com/wonny/horizon/internal/contracts"
)

// Config는 레짐 분류와 멀티 호라이즌 스캔 전략의 전체 설정
type Config struct {
	Meta    Meta    `yaml:"meta" json:"meta"`
	Cache   Cache   `yaml:"cache" json:"cache"`
	Regime  Regime  `yaml:"regime" json:"regime"`
	Stage1  Stage1  `yaml:"stage1" json:"stage1"`
	Scoring Scoring `yaml:"scoring" json:"scoring"`
	Scan    Scan    `yaml:"scan" json:"scan"`
}

// Meta 메타 정보
type Meta struct {
	EngineID string `yaml:"engine_id" json:"engine_id"`
	Version  string `yaml:"version" json:"version"`
	Timezone string `yaml:"timezone" json:"timezone"`
}

// Cache 증분 바 캐시 설정
type Cache struct {
	BootstrapDays int    `yaml:"bootstrap_days" json:"bootstrap_days"` // 최초 적재 구간 (거래일)
	FetchTimeout  string `yaml:"fetch_timeout" json:"fetch_timeout"`   // 외부 fetch 제한시간 (예: 10s)
}

// Regime 시장 국면 분류 설정
type Regime struct {
	KRWeight float64 `yaml:"kr_weight" json:"kr_weight"` // 합 = 1.0
	USWeight float64 `yaml:"us_weight" json:"us_weight"`

	BullMin float64 `yaml:"bull_min" json:"bull_min"` // score >= bull_min → bull
	BearMax float64 `yaml:"bear_max" json:"bear_max"` // score <= bear_max → bear

	Crash   Crash   `yaml:"crash" json:"crash"`
	PreOpen PreOpen `yaml:"pre_open" json:"pre_open"`

	Sources Sources `yaml:"sources" json:"sources"`
}

// Crash 폭락 오버라이드: 점수와 무관하게 crash로 강제
type Crash struct {
	IntradayDrawdown float64 `yaml:"intraday_drawdown" json:"intraday_drawdown"` // 예: -2.5 (%)
	VolIndex         float64 `yaml:"vol_index" json:"vol_index"`                 // 예: 35.0
}

// PreOpen 미국 프리장 경고 밴드와 감점
type PreOpen struct {
	WatchReturn   float64 `yaml:"watch_return" json:"watch_return"`   // 예: -0.5 (%)
	DangerReturn  float64 `yaml:"danger_return" json:"danger_return"` // 예: -1.5 (%)
	WatchPenalty  float64 `yaml:"watch_penalty" json:"watch_penalty"`
	DangerPenalty float64 `yaml:"danger_penalty" json:"danger_penalty"`
}

// Sources 레짐 입력 심볼과 소스별 라벨 임계치
type Sources struct {
	KRIndex   Source `yaml:"kr_index" json:"kr_index"`
	USIndex   Source `yaml:"us_index" json:"us_index"`
	USFutures Source `yaml:"us_futures" json:"us_futures"`
	VolIndex  Source `yaml:"vol_index" json:"vol_index"`
}

// Source 단일 레짐 입력 소스
type Source struct {
	Symbol     string  `yaml:"symbol" json:"symbol"`
	Market     string  `yaml:"market" json:"market"`
	BullishMin float64 `yaml:"bullish_min" json:"bullish_min"` // 수익률 (%) 기준
	BearishMax float64 `yaml:"bearish_max" json:"bearish_max"`
	ScoreScale float64 `yaml:"score_scale" json:"score_scale"` // 수익률 → 점수 배율
}

// Stage1 유동성/변동성 선행 필터
type Stage1 struct {
	Window        int     `yaml:"window" json:"window"`                 // 최근 세션 수 (예: 5)
	PriceFloor    float64 `yaml:"price_floor" json:"price_floor"`       // 최소 종가 (원)
	TurnoverFloor float64 `yaml:"turnover_floor" json:"turnover_floor"` // 20일 평균 거래대금 하한 (원)
	ATRMin        float64 `yaml:"atr_min" json:"atr_min"`               // ATR% 하한
	ATRMax        float64 `yaml:"atr_max" json:"atr_max"`               // ATR% 상한
}

// Scoring 호라이즌별 진입 컷오프와 후보 수 상한
type Scoring struct {
	// Cutoffs[regime][horizon] = adjusted score 하한. 999 = 해당 호라이즌 비활성화
	Cutoffs map[contracts.Regime]map[contracts.Horizon]float64 `yaml:"cutoffs" json:"cutoffs"`

	// MaxCandidates[horizon] = 랭킹 후 상위 N개만 유지
	MaxCandidates map[contracts.Horizon]int `yaml:"max_candidates" json:"max_candidates"`
}

// Scan 오케스트레이터 설정
type Scan struct {
	Workers int `yaml:"workers" json:"workers"` // 유니버스 병렬 처리 워커 수
}

// Cutoff returns the admission cutoff for a regime/horizon cell.
// Validate()가 테이블 완전성을 보장하므로 누락 셀은 설정 오류
func (c *Config) Cutoff(regime contracts.Regime, horizon contracts.Horizon) float64 {
	return c.Scoring.Cutoffs[regime][horizon]
}

// Cap returns the candidate cap for a horizon
func (c *Config) Cap(horizon contracts.Horizon) int {
	return c.Scoring.MaxCandidates[horizon]
}
