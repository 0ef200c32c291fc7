package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	engineConfig string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "horizon",
	Short: "Horizon - 멀티 호라이즌 시장 스캐닝 엔진",
	Long: `Horizon Unified CLI

시장 국면 분류와 3개 투자 호라이즌(스윙/포지션/장기) 스캐닝 엔진.
일봉 캐시 → 국면 분류 → 1차 필터 → 점수화 → 랭킹 파이프라인.

Usage:
  go run ./cmd/horizon [command]

Examples:
  go run ./cmd/horizon scan
  go run ./cmd/horizon regime --date 2026-08-28
  go run ./cmd/horizon api
  go run ./cmd/horizon scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&engineConfig, "engine-config", "", "engine config YAML (default from ENGINE_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
