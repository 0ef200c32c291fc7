package contracts

import (
	"errors"
	"fmt"
)

// Engine error taxonomy
// 전파 정책: fetch 실패는 기존 캐시를 건드리지 않고, 스코어링 실패는 종목 단위로 격리
var (
	// ErrDataUnavailable: 일시적 소스 장애, 다음 주기 재시도
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInsufficientData: 지표 계산에 필요한 이력 부족, 종목 제외 (호출자 에러 아님)
	ErrInsufficientData = errors.New("insufficient data")

	// ErrConfigInvalid: 기동 시점 치명 오류, 기본값으로 대체하지 않고 거부
	ErrConfigInvalid = errors.New("config invalid")
)

// SymbolScoringError wraps a per-symbol scoring failure.
// 배치를 중단시키지 않고 로깅 후 해당 종목만 제외됨
type SymbolScoringError struct {
	Symbol string
	Err    error
}

func (e *SymbolScoringError) Error() string {
	return fmt.Sprintf("scoring failed for %s: %v", e.Symbol, e.Err)
}

func (e *SymbolScoringError) Unwrap() error {
	return e.Err
}
