package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/horizon/internal/contracts"
	"github.com/wonny/horizon/internal/engineconfig"
	"github.com/wonny/horizon/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "엔진 설정 검증",
	Long: `엔진 YAML 설정을 로드하고 검증합니다.

이 명령어는:
- 알 수 없는 필드 / 누락 필드 즉시 실패 (KnownFields)
- 가중치 합 / 컷오프 테이블 완전성 검증
- 재현성 해시(SHA-256) 출력

Example:
  go run ./cmd/horizon config
  go run ./cmd/horizon config --engine-config config/horizon.yaml`,
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := engineConfig
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path = cfg.EngineConfigPath
	}

	engineCfg, _, err := engineconfig.Load(path)
	if err != nil {
		return fmt.Errorf("❌ %s: %w", path, err)
	}

	hash, err := engineconfig.Hash(engineCfg)
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}

	fmt.Printf("✅ %s is valid\n\n", path)
	fmt.Printf("  Version   : %s\n", engineCfg.Meta.Version)
	fmt.Printf("  Hash      : %s\n", hash)
	fmt.Printf("  Weights   : KR %.2f / US %.2f\n", engineCfg.Regime.KRWeight, engineCfg.Regime.USWeight)
	fmt.Printf("  Workers   : %d\n", engineCfg.Scan.Workers)

	fmt.Println("\n  Cutoffs:")
	for _, regime := range contracts.Regimes {
		fmt.Printf("    %-8s", regime)
		for _, horizon := range contracts.HorizonsAll {
			fmt.Printf("  %s=%.1f", horizon, engineCfg.Cutoff(regime, horizon))
		}
		fmt.Println()
	}

	return nil
}
