package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/horizon/internal/contracts"
)

// Repository persists scan and regime results to PostgreSQL
// 엔진은 장기 저장소를 소유하지 않음: 이 저장소는 외부 협력자 구현체
// ⭐ SSOT: 스캔 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new scan repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ contracts.ScanStore = (*Repository)(nil)

// SaveScanResult upserts a scan result for its date.
// 같은 날짜 재실행은 기존 결과를 대체함 (새 ScanResult가 이전 것을 supersede)
func (r *Repository) SaveScanResult(ctx context.Context, result *contracts.ScanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}

	query := `
		INSERT INTO horizon.scan_results (
			scan_date, run_id, final_regime, universe_size, passed_stage1, payload
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (scan_date) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			final_regime = EXCLUDED.final_regime,
			universe_size = EXCLUDED.universe_size,
			passed_stage1 = EXCLUDED.passed_stage1,
			payload = EXCLUDED.payload,
			created_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		result.Date, result.RunID, string(result.Regime.FinalRegime),
		result.UniverseSize, result.PassedStage1, payload,
	)
	if err != nil {
		return fmt.Errorf("save scan result: %w", err)
	}
	return nil
}

// SaveRegimeResult upserts a regime result for its date
func (r *Repository) SaveRegimeResult(ctx context.Context, result *contracts.RegimeResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal regime result: %w", err)
	}

	query := `
		INSERT INTO horizon.regime_results (
			trade_date, final_regime, final_score, degraded, payload
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trade_date) DO UPDATE SET
			final_regime = EXCLUDED.final_regime,
			final_score = EXCLUDED.final_score,
			degraded = EXCLUDED.degraded,
			payload = EXCLUDED.payload,
			created_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		result.Date, string(result.FinalRegime), result.FinalScore,
		result.Degraded(), payload,
	)
	if err != nil {
		return fmt.Errorf("save regime result: %w", err)
	}
	return nil
}

// GetScanResult loads the scan result for a date
func (r *Repository) GetScanResult(ctx context.Context, date time.Time) (*contracts.ScanResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM horizon.scan_results WHERE scan_date = $1`, date,
	).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("get scan result: %w", err)
	}

	var result contracts.ScanResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal scan result: %w", err)
	}
	return &result, nil
}

// GetLatestScanResult loads the most recent scan result
func (r *Repository) GetLatestScanResult(ctx context.Context) (*contracts.ScanResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM horizon.scan_results ORDER BY scan_date DESC LIMIT 1`,
	).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("get latest scan result: %w", err)
	}

	var result contracts.ScanResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal scan result: %w", err)
	}
	return &result, nil
}

// GetRegimeResult loads the regime result for a date
func (r *Repository) GetRegimeResult(ctx context.Context, date time.Time) (*contracts.RegimeResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM horizon.regime_results WHERE trade_date = $1`, date,
	).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("get regime result: %w", err)
	}

	var result contracts.RegimeResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal regime result: %w", err)
	}
	return &result, nil
}
