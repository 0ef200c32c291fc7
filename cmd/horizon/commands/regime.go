package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// regimeCmd represents the regime command
var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "시장 국면 분류",
	Long: `한 거래일의 시장 국면(bull/neutral/bear/crash)을 분류합니다.

가중 합산 소스:
- KR 지수 당일 (weight 0.6)
- US 지수 전일 종가 (weight 0.4)
- US 선물은 장전 참고 시그널로만 반영 (감점)

Example:
  go run ./cmd/horizon regime
  go run ./cmd/horizon regime --date 2026-08-28`,
	RunE: runRegime,
}

var regimeDate string

func init() {
	rootCmd.AddCommand(regimeCmd)

	regimeCmd.Flags().StringVar(&regimeDate, "date", "", "date YYYY-MM-DD (default today)")
}

func runRegime(cmd *cobra.Command, args []string) error {
	eng, err := initEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	date, err := resolveDate(regimeDate)
	if err != nil {
		return err
	}

	result, err := eng.analyzer.Classify(context.Background(), date)
	if err != nil {
		return fmt.Errorf("classify regime: %w", err)
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Regime %s\n", result.Date.Format("2006-01-02"))
	fmt.Println("───────────────────────────────────────────────────────────")
	fmt.Printf("  Final     : %s (score %.2f)\n", result.FinalRegime, result.FinalScore)
	fmt.Printf("  KR        : %-8s score %6.2f  return %6.2f%%\n", result.KR.Label, result.KR.Score, result.KR.Return)
	fmt.Printf("  US prev   : %-8s score %6.2f  return %6.2f%%\n", result.USPrev.Label, result.USPrev.Score, result.USPrev.Return)
	fmt.Printf("  US futures: %-8s return %6.2f%%  pre-open %s\n", result.USFutures.Label, result.USFutures.Return, result.PreOpen)
	if result.CrashReason != "" {
		fmt.Printf("  Crash     : %s\n", result.CrashReason)
	}
	if len(result.DefaultedSources) > 0 {
		fmt.Printf("  Degraded  : %v\n", result.DefaultedSources)
	}
	fmt.Println()
	return nil
}
