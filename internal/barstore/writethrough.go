package barstore

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/pkg/logger"
)

// Store is the persistence surface the write-through layer needs
type Store interface {
	contracts.BarProvider
	SaveBars(ctx context.Context, symbol, market string, bars contracts.BarSeries) error
}

// WriteThrough fetches bars from a remote provider and persists them,
// falling back to the local store when the remote source is down.
// 원격 실패 시에도 저장된 구간은 계속 제공됨
type WriteThrough struct {
	remote contracts.BarProvider
	store  Store
	logger *logger.Logger
}

// NewWriteThrough creates a write-through bar provider
func NewWriteThrough(remote contracts.BarProvider, store Store, log *logger.Logger) *WriteThrough {
	return &WriteThrough{
		remote: remote,
		store:  store,
		logger: log,
	}
}

var _ contracts.BarProvider = (*WriteThrough)(nil)

// FetchBars fetches from the remote provider and upserts into the store.
// 저장 실패는 경고만 남김 (조회 경로를 막지 않음)
func (w *WriteThrough) FetchBars(ctx context.Context, symbol, market string, from, to time.Time) (contracts.BarSeries, error) {
	bars, err := w.remote.FetchBars(ctx, symbol, market, from, to)
	if err != nil {
		if errors.Is(err, contracts.ErrDataUnavailable) {
			stored, storeErr := w.store.FetchBars(ctx, symbol, market, from, to)
			if storeErr == nil && len(stored) > 0 {
				w.logger.WithFields(map[string]interface{}{
					"symbol": symbol,
					"market": market,
					"bars":   len(stored),
				}).Warn("Remote fetch failed, serving stored bars")
				return stored, nil
			}
		}
		return nil, err
	}

	if saveErr := w.store.SaveBars(ctx, symbol, market, bars); saveErr != nil {
		w.logger.WithError(saveErr).WithField("symbol", symbol).Warn("Failed to persist fetched bars")
	}

	return bars, nil
}
