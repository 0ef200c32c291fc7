package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/horizon/internal/scheduler"
	"github.com/wonny/horizon/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- cache_refresh: 평일 15:40 (유니버스 캐시 갱신)
- daily_scan:    평일 16:00 (전체 스캔 + 저장)

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 이력 조회

Example:
  go run ./cmd/horizon scheduler start
  go run ./cmd/horizon scheduler run daily_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 이력 조회",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Horizon Scheduler ===")

	eng, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer eng.close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.JobNames() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	eng, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer eng.close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.JobNames() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	eng, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer eng.close()

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job completed")
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	eng, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer eng.close()

	fmt.Println("Job History:")
	fmt.Println()

	for _, jobName := range sched.JobNames() {
		history, err := sched.History(jobName)
		if err != nil {
			continue
		}

		fmt.Printf("📊 %s\n", jobName)
		for _, result := range history.Latest(5) {
			status := "✅"
			if !result.Success {
				status = "❌"
			}
			fmt.Printf("   %s %s  %.2fs", status, result.StartTime.Format("2006-01-02 15:04:05"), result.Duration.Seconds())
			if result.Error != "" {
				fmt.Printf("  (%s)", result.Error)
			}
			fmt.Println()
		}
		fmt.Println()
	}

	return nil
}

func initScheduler() (*engine, *scheduler.Scheduler, error) {
	eng, err := initEngine()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(eng.log)

	refreshJob := jobs.NewCacheRefreshJob(eng.cache, eng.store, eng.log)
	scanJob := jobs.NewDailyScanJob(eng.orchestrator, eng.store, eng.log)

	for _, job := range []scheduler.Job{refreshJob, scanJob} {
		if err := sched.AddJob(job); err != nil {
			eng.close()
			return nil, nil, fmt.Errorf("register %s: %w", job.Name(), err)
		}
	}

	return eng, sched, nil
}
