package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/etf-rs/internal/scheduler"
	"github.com/wonny/etf-rs/internal/scheduler/jobs"
	"github.com/wonny/etf-rs/pkg/logger"
)

// scheduleCmd runs the batch on a cron schedule
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "랭킹 배치 스케줄러 시작",
	Long: `SCHEDULE_CRON (초 포함, KST) 에 맞춰 랭킹 배치를 반복 실행합니다.
기본값은 평일 16:30 (장 마감 후) 입니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.

Example:
  go run ./cmd/etfrs schedule
  go run ./cmd/etfrs schedule --run-now`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

var (
	runNow bool
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "시작 직후 한 번 실행")
	scheduleCmd.Flags().BoolVar(&dryRun, "dry-run", false, "블로그 포스팅 생략")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg)

	sched := scheduler.New(log)
	job := jobs.NewRankingJob(newOrchestrator(cfg, log), cfg.ScheduleCron, dryRun, log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	PrintSuccess(fmt.Sprintf("Scheduler started: %s (%s, KST)", job.Name(), job.Schedule()))
	PrintInfo("Press Ctrl+C to stop")

	ctx, stop := signalContext()
	defer stop()

	if runNow {
		go func() {
			if _, err := sched.RunJob(ctx, job.Name()); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("Immediate run failed")
			}
		}()
	}

	<-ctx.Done()

	stats := sched.GetJobStats()[job.Name()]
	PrintSeparator()
	PrintKeyValue("Runs", fmt.Sprintf("%d (success %d, failed %d)", stats.TotalRuns, stats.SuccessCount, stats.FailureCount), 6)
	return nil
}
