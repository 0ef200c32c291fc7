package contracts

import (
	"context"
	"time"
)

// BarProvider supplies OHLCV bars per symbol/date range.
// ⭐ SSOT: 바 데이터 수급 계약은 이 인터페이스로만
type BarProvider interface {
	// FetchBars returns bars in [from, to], ascending by date.
	// 소스 장애 시 ErrDataUnavailable을 래핑해서 반환
	FetchBars(ctx context.Context, symbol, market string, from, to time.Time) (BarSeries, error)
}

// UniverseProvider lists the symbols eligible for scanning on a date
type UniverseProvider interface {
	ListSymbols(ctx context.Context, date time.Time) ([]SymbolRef, error)
}

// ScanStore persists scan and regime results (external collaborator)
type ScanStore interface {
	SaveScanResult(ctx context.Context, result *ScanResult) error
	SaveRegimeResult(ctx context.Context, result *RegimeResult) error
}
