package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/horizon/internal/contracts"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "전체 스캔 실행",
	Long: `한 거래일에 대해 전체 스캐닝 파이프라인을 실행합니다.

이 명령어는:
- 시장 국면 분류 (KR 당일 + US 전일 + US 선물)
- Stage-1 거래성 필터
- 호라이즌별 점수화 / 랭킹 / 상한 적용
- 결과를 DB에 저장

Example:
  go run ./cmd/horizon scan
  go run ./cmd/horizon scan --date 2026-08-28
  go run ./cmd/horizon scan --symbols 005930,000660`,
	RunE: runScan,
}

var (
	scanDate    string
	scanSymbols []string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanDate, "date", "", "scan date YYYY-MM-DD (default today)")
	scanCmd.Flags().StringSliceVar(&scanSymbols, "symbols", nil, "restrict universe to these KOSPI symbols")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Horizon Scan ===")

	eng, err := initEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	date, err := resolveDate(scanDate)
	if err != nil {
		return err
	}

	ctx := context.Background()

	universe, err := resolveUniverse(ctx, eng, date)
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}
	if len(universe) == 0 {
		return fmt.Errorf("empty universe for %s", date.Format("2006-01-02"))
	}

	result, err := eng.orchestrator.Run(ctx, date, universe)
	if err != nil {
		return fmt.Errorf("scan run: %w", err)
	}

	printScanResult(result)
	return nil
}

func resolveDate(flag string) (time.Time, error) {
	if flag == "" {
		return time.Now(), nil
	}
	date, err := time.Parse("2006-01-02", flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date (must be YYYY-MM-DD): %w", err)
	}
	return date, nil
}

func resolveUniverse(ctx context.Context, eng *engine, date time.Time) ([]contracts.SymbolRef, error) {
	if len(scanSymbols) > 0 {
		refs := make([]contracts.SymbolRef, 0, len(scanSymbols))
		for _, code := range scanSymbols {
			refs = append(refs, contracts.SymbolRef{Code: code, Market: "KOSPI"})
		}
		return refs, nil
	}
	return eng.store.ListSymbols(ctx, date)
}

func printScanResult(result *contracts.ScanResult) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Scan %s  (run %s)\n", result.Date.Format("2006-01-02"), result.RunID)
	fmt.Println("───────────────────────────────────────────────────────────")
	fmt.Printf("  Regime    : %s (score %.2f)\n", result.Regime.FinalRegime, result.Regime.FinalScore)
	if result.Regime.CrashReason != "" {
		fmt.Printf("  Crash     : %s\n", result.Regime.CrashReason)
	}
	total := 0
	for _, n := range result.Counts {
		total += n
	}
	fmt.Printf("  Universe  : %d → Stage1 %d → Candidates %d\n",
		result.UniverseSize, result.PassedStage1, total)
	fmt.Printf("  Duration  : %s\n", result.Duration)
	fmt.Println("───────────────────────────────────────────────────────────")

	for _, horizon := range contracts.HorizonsAll {
		candidates := result.Candidates[horizon]
		if len(candidates) == 0 {
			continue
		}
		fmt.Printf("\n  [%s] %d candidates\n", horizon, len(candidates))
		for _, c := range candidates {
			fmt.Printf("    %-8s  score %5.2f  risk %4.2f  %s (%s)\n",
				c.Symbol, c.AdjustedScore, c.RiskScore, c.Label, c.StrategyTier)
		}
	}

	if len(result.Failures) > 0 {
		fmt.Printf("\n  Failures: %d\n", len(result.Failures))
		for symbol, reason := range result.Failures {
			fmt.Printf("    %-8s  %s\n", symbol, reason)
		}
	}
	fmt.Println()
}
