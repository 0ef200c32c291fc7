package engineconfig

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/horizon/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return contracts.ErrConfigInvalid
}

// Validate checks all required constraints
// 실패 시 error 반환 (기본값 대체 없이 기동 거부)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.EngineID == "" {
		return ValidationError{"meta.engine_id", "required"}
	}
	if cfg.Meta.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}

	// === Cache ===
	if cfg.Cache.BootstrapDays <= 0 {
		return ValidationError{"cache.bootstrap_days", "must be > 0"}
	}
	if cfg.Cache.FetchTimeout != "" {
		d, err := time.ParseDuration(cfg.Cache.FetchTimeout)
		if err != nil {
			return ValidationError{"cache.fetch_timeout", err.Error()}
		}
		if d <= 0 {
			return ValidationError{"cache.fetch_timeout", "must be > 0"}
		}
	}

	// === Regime ===
	sum := cfg.Regime.KRWeight + cfg.Regime.USWeight
	if math.Abs(sum-1.0) > 1e-6 {
		return ValidationError{"regime", fmt.Sprintf("kr_weight + us_weight must sum to 1.0, got %.4f", sum)}
	}
	if cfg.Regime.BullMin <= cfg.Regime.BearMax {
		return ValidationError{"regime", "bull_min must be > bear_max"}
	}
	if cfg.Regime.Crash.IntradayDrawdown >= 0 {
		return ValidationError{"regime.crash.intraday_drawdown", "must be negative"}
	}
	if cfg.Regime.Crash.VolIndex <= 0 {
		return ValidationError{"regime.crash.vol_index", "must be > 0"}
	}
	if cfg.Regime.PreOpen.DangerReturn > cfg.Regime.PreOpen.WatchReturn {
		return ValidationError{"regime.pre_open", "danger_return must be <= watch_return"}
	}
	if cfg.Regime.PreOpen.WatchPenalty < 0 || cfg.Regime.PreOpen.DangerPenalty < cfg.Regime.PreOpen.WatchPenalty {
		return ValidationError{"regime.pre_open", "penalties must satisfy 0 <= watch <= danger"}
	}
	for field, src := range map[string]Source{
		"regime.sources.kr_index":   cfg.Regime.Sources.KRIndex,
		"regime.sources.us_index":   cfg.Regime.Sources.USIndex,
		"regime.sources.us_futures": cfg.Regime.Sources.USFutures,
		"regime.sources.vol_index":  cfg.Regime.Sources.VolIndex,
	} {
		if src.Symbol == "" {
			return ValidationError{field + ".symbol", "required"}
		}
		if src.Market == "" {
			return ValidationError{field + ".market", "required"}
		}
	}

	// === Stage1 ===
	if cfg.Stage1.Window <= 0 {
		return ValidationError{"stage1.window", "must be > 0"}
	}
	if cfg.Stage1.PriceFloor < 0 || cfg.Stage1.TurnoverFloor < 0 {
		return ValidationError{"stage1", "floors must be >= 0"}
	}
	if cfg.Stage1.ATRMin < 0 || cfg.Stage1.ATRMax <= cfg.Stage1.ATRMin {
		return ValidationError{"stage1", "must satisfy 0 <= atr_min < atr_max"}
	}

	// === Scoring ===
	// cutoff 테이블은 regime × horizon 전 셀이 있어야 함
	for _, regime := range contracts.Regimes {
		row, ok := cfg.Scoring.Cutoffs[regime]
		if !ok {
			return ValidationError{"scoring.cutoffs", fmt.Sprintf("missing regime %q", regime)}
		}
		for _, horizon := range contracts.HorizonsAll {
			if _, ok := row[horizon]; !ok {
				return ValidationError{"scoring.cutoffs", fmt.Sprintf("missing cell %s/%s", regime, horizon)}
			}
		}
	}
	for _, horizon := range contracts.HorizonsAll {
		limit, ok := cfg.Scoring.MaxCandidates[horizon]
		if !ok {
			return ValidationError{"scoring.max_candidates", fmt.Sprintf("missing horizon %q", horizon)}
		}
		if limit <= 0 {
			return ValidationError{"scoring.max_candidates", fmt.Sprintf("%s must be > 0", horizon)}
		}
	}

	// === Scan ===
	if cfg.Scan.Workers <= 0 {
		return ValidationError{"scan.workers", "must be > 0"}
	}

	return nil
}
