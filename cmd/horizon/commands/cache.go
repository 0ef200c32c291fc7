package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "일봉 캐시 관리",
	Long: `일봉 캐시를 관리합니다.

Subcommands:
  warm  - 유니버스 전체의 캐시를 선적재

Example:
  go run ./cmd/horizon cache warm
  go run ./cmd/horizon cache warm --date 2026-08-28`,
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "유니버스 캐시 선적재",
	RunE:  runCacheWarm,
}

var cacheDate string

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheWarmCmd)

	cacheWarmCmd.Flags().StringVar(&cacheDate, "date", "", "as-of date YYYY-MM-DD (default today)")
}

func runCacheWarm(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Horizon Cache Warm ===")

	eng, err := initEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	date, err := resolveDate(cacheDate)
	if err != nil {
		return err
	}

	ctx := context.Background()

	refs, err := eng.store.ListSymbols(ctx, date)
	if err != nil {
		return fmt.Errorf("list universe: %w", err)
	}

	failed := 0
	for i, ref := range refs {
		if _, err := eng.cache.GetOrUpdate(ctx, ref.Code, ref.Market, date); err != nil {
			failed++
			if verbose {
				fmt.Printf("  ✗ %s: %v\n", ref.Code, err)
			}
		}
		if (i+1)%100 == 0 {
			fmt.Printf("  [%d/%d] warmed\n", i+1, len(refs))
		}
	}

	stats := eng.cache.Stats()
	fmt.Println()
	fmt.Printf("✅ Warmed %d symbols (%d failed)\n", len(refs)-failed, failed)
	fmt.Printf("   Entries: %d  Bars: %d  ~%.1f MB\n",
		stats.EntryCount, stats.TotalBars, float64(stats.TotalBytes)/(1024*1024))
	return nil
}
