package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/horizon/internal/api"
	"github.com/wonny/horizon/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 스캔/국면 결과 조회 엔드포인트 제공
- 캐시 통계 제공

Endpoints:
  GET  /health              - Health check
  GET  /api/scan/latest     - 최근 스캔 결과
  GET  /api/scan/{date}     - 일자별 스캔 결과
  GET  /api/regime/{date}   - 일자별 국면 결과
  GET  /api/cache/stats     - 일봉 캐시 통계

Example:
  go run ./cmd/horizon api
  go run ./cmd/horizon api --port 8091`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Horizon API Server ===")

	eng, err := initEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	if apiPort != "" {
		eng.cfg.Port = apiPort
	}

	scanHandler := handlers.NewScanHandler(eng.repo, eng.log)
	opsHandler := handlers.NewOpsHandler(eng.db, eng.cache, nil, eng.log)

	router := api.NewRouter(scanHandler, opsHandler, eng.log)
	server := api.New(eng.cfg, eng.log, router)

	go func() {
		if err := server.Start(); err != nil {
			eng.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", eng.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/scan/latest")
	fmt.Println("  GET  /api/scan/{date}")
	fmt.Println("  GET  /api/regime/{date}")
	fmt.Println("  GET  /api/cache/stats")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	eng.log.Info("Server stopped")
	return nil
}
