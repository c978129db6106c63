package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/etf-rs/internal/brain"
	"github.com/wonny/etf-rs/pkg/logger"
)

// DefaultSchedule runs after the KRX close on weekdays (KST, with seconds)
const DefaultSchedule = "0 30 16 * * 1-5"

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// RankingJob refreshes the RS ranking on a schedule
// ⭐ SSOT: 랭킹 배치 스케줄은 이 Job에서만
type RankingJob struct {
	runner   Runner
	schedule string
	dryRun   bool
	logger   *logger.Logger
	now      func() time.Time
}

// NewRankingJob creates a new ranking job
func NewRankingJob(runner Runner, schedule string, dryRun bool, log *logger.Logger) *RankingJob {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &RankingJob{
		runner:   runner,
		schedule: schedule,
		dryRun:   dryRun,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *RankingJob) Name() string {
	return "rs_ranking"
}

// Schedule returns the cron schedule
func (j *RankingJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline once
func (j *RankingJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled RS ranking")

	now := j.now().In(logger.KST)
	result, err := j.runner.Run(ctx, brain.RunConfig{
		Date:   now,
		RunID:  brain.NewRunID(now),
		DryRun: j.dryRun,
	})
	if err != nil {
		return fmt.Errorf("ranking run: %w", err)
	}

	fields := map[string]interface{}{
		"run_id":    result.RunID,
		"published": result.Published,
	}
	if result.Ranked != nil {
		fields["ranked"] = result.Ranked.Count()
	}
	j.logger.WithFields(fields).Info("Scheduled RS ranking completed")

	return nil
}
