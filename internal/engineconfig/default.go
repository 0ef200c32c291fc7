package engineconfig

import "github.com/wonny/horizon/internal/contracts"

// Default returns the default engine configuration
// SSOT: config/horizon.yaml과 동일한 값
func Default() *Config {
	return &Config{
		Meta: Meta{
			EngineID: "horizon_kr_v1",
			Version:  "1.0",
			Timezone: "Asia/Seoul",
		},
		Cache: Cache{
			BootstrapDays: 120,
			FetchTimeout:  "10s",
		},
		Regime: Regime{
			KRWeight: 0.6,
			USWeight: 0.4,
			BullMin:  3.0,
			BearMax:  -3.0,
			Crash: Crash{
				IntradayDrawdown: -2.5, // 당일 고점 대비 -2.5% 이상 급락
				VolIndex:         35.0, // VIX 35 이상
			},
			PreOpen: PreOpen{
				WatchReturn:   -0.5,
				DangerReturn:  -1.5,
				WatchPenalty:  1.0,
				DangerPenalty: 2.5,
			},
			Sources: Sources{
				KRIndex:   Source{Symbol: "KOSPI", Market: "index", BullishMin: 0.5, BearishMax: -0.5, ScoreScale: 4.0},
				USIndex:   Source{Symbol: "NAS@IXIC", Market: "world", BullishMin: 0.5, BearishMax: -0.5, ScoreScale: 3.0},
				USFutures: Source{Symbol: "NAS@NQ", Market: "world", BullishMin: 0.3, BearishMax: -0.3, ScoreScale: 2.0},
				VolIndex:  Source{Symbol: "VIX@VIX", Market: "world"},
			},
		},
		Stage1: Stage1{
			Window:        5,
			PriceFloor:    1000,          // 동전주 제외
			TurnoverFloor: 1_000_000_000, // 20일 평균 거래대금 10억 이상
			ATRMin:        1.0,
			ATRMax:        8.0,
		},
		Scoring: Scoring{
			Cutoffs: map[contracts.Regime]map[contracts.Horizon]float64{
				contracts.RegimeBull: {
					contracts.HorizonSwing:    6.0,
					contracts.HorizonPosition: 5.0,
					contracts.HorizonLongterm: 4.0,
				},
				contracts.RegimeNeutral: {
					contracts.HorizonSwing:    5.5,
					contracts.HorizonPosition: 4.5,
					contracts.HorizonLongterm: 4.0,
				},
				contracts.RegimeBear: {
					// 약세장에서는 단기 스윙 진입 차단
					contracts.HorizonSwing:    999,
					contracts.HorizonPosition: 6.0,
					contracts.HorizonLongterm: 5.0,
				},
				contracts.RegimeCrash: {
					// 폭락장에서는 전 호라이즌 차단
					contracts.HorizonSwing:    999,
					contracts.HorizonPosition: 999,
					contracts.HorizonLongterm: 999,
				},
			},
			MaxCandidates: map[contracts.Horizon]int{
				contracts.HorizonSwing:    10,
				contracts.HorizonPosition: 10,
				contracts.HorizonLongterm: 5,
			},
		},
		Scan: Scan{
			Workers: 8,
		},
	}
}
