package barstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/horizon/internal/contracts"
)

// Postgres is a bar store backed by PostgreSQL.
// contracts.BarProvider와 contracts.UniverseProvider 구현체
// ⭐ SSOT: 일봉 저장소 접근은 여기서만
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new Postgres bar store
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var (
	_ contracts.BarProvider      = (*Postgres)(nil)
	_ contracts.UniverseProvider = (*Postgres)(nil)
)

// FetchBars returns bars in [from, to], ascending by date
func (s *Postgres) FetchBars(ctx context.Context, symbol, market string, from, to time.Time) (contracts.BarSeries, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume, trading_value
		FROM horizon.daily_bars
		WHERE symbol = $1 AND market = $2 AND trade_date BETWEEN $3 AND $4
		ORDER BY trade_date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, market, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: query bars: %v", contracts.ErrDataUnavailable, err)
	}
	defer rows.Close()

	bars := make(contracts.BarSeries, 0)
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.Value); err != nil {
			return nil, fmt.Errorf("%w: scan bar: %v", contracts.ErrDataUnavailable, err)
		}
		bars = append(bars, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: iterate bars: %v", contracts.ErrDataUnavailable, rows.Err())
	}
	return bars, nil
}

// SaveBars upserts bars for a symbol
func (s *Postgres) SaveBars(ctx context.Context, symbol, market string, bars contracts.BarSeries) error {
	if len(bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO horizon.daily_bars (
			symbol, market, trade_date, open_price, high_price, low_price, close_price, volume, trading_value
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol, market, trade_date) DO NOTHING
	`
	for _, b := range bars {
		batch.Queue(query, symbol, market, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, b.Value)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save bars for %s: %w", symbol, err)
		}
	}
	return nil
}

// ListSymbols returns the active scanning universe for a date
func (s *Postgres) ListSymbols(ctx context.Context, date time.Time) ([]contracts.SymbolRef, error) {
	query := `
		SELECT code, market
		FROM horizon.symbols
		WHERE status = 'active' AND listing_date <= $1
		ORDER BY code ASC
	`

	rows, err := s.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	refs := make([]contracts.SymbolRef, 0)
	for rows.Next() {
		var ref contracts.SymbolRef
		if err := rows.Scan(&ref.Code, &ref.Market); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
