package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/internal/report"
	"github.com/wonny/etf-rs/internal/s0_data/collector"
	"github.com/wonny/etf-rs/internal/s0_data/quality"
	"github.com/wonny/etf-rs/internal/s1_universe"
	"github.com/wonny/etf-rs/internal/s2_signals"
	"github.com/wonny/etf-rs/internal/selection"
	"github.com/wonny/etf-rs/pkg/config"
	"github.com/wonny/etf-rs/pkg/logger"
)

// 단계 이름
const (
	StageUniverse  = "S1:Universe"
	StageBenchmark = "S0:Benchmark"
	StageHistory   = "S0:History"
	StageSignals   = "S2:Signals"
	StageRanking   = "S4:Ranking"
	StageExport    = "S5:Export"
	StagePublish   = "S6:Publish"
)

// Orchestrator coordinates the ranking pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Stage components
	selector      *s1_universe.Selector
	collector     *collector.Collector
	qualityGate   *quality.QualityGate
	momentum      *s2_signals.MomentumCalculator
	signalBuilder *s2_signals.Builder
	ranker        *selection.Ranker
	publisher     contracts.Publisher

	benchmarkCode string
	output        config.OutputConfig

	logger *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	Date   time.Time // 기준 시각 (KST)
	RunID  string
	DryRun bool // true 이면 블로그 포스팅 생략
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Date            time.Time
	Success         bool
	Error           error
	CompletedStages []string
	Universe        *contracts.Universe
	QualitySnapshot *contracts.DataQualitySnapshot
	Benchmark       contracts.BenchmarkReturns
	Ranked          *contracts.RankedResult
	Title           string
	CSVPath         string
	HTMLPath        string
	Published       bool
	PublishError    error // 기록만 하고 실행은 성공 처리
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	selector *s1_universe.Selector,
	collector *collector.Collector,
	qualityGate *quality.QualityGate,
	momentum *s2_signals.MomentumCalculator,
	signalBuilder *s2_signals.Builder,
	ranker *selection.Ranker,
	publisher contracts.Publisher,
	benchmarkCode string,
	output config.OutputConfig,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		selector:      selector,
		collector:     collector,
		qualityGate:   qualityGate,
		momentum:      momentum,
		signalBuilder: signalBuilder,
		ranker:        ranker,
		publisher:     publisher,
		benchmarkCode: benchmarkCode,
		output:        output,
		logger:        logger,
	}
}

// Run executes the pipeline
// S1 → S0 → S2 → S4 → S5 → S6
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.Date.IsZero() {
		config.Date = time.Now()
	}
	config.Date = config.Date.In(logger.KST)
	if config.RunID == "" {
		config.RunID = NewRunID(config.Date)
	}

	result := &RunResult{
		RunID:           config.RunID,
		Date:            config.Date,
		Success:         false,
		CompletedStages: make([]string, 0),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":    config.RunID,
		"date":      config.Date.Format("2006-01-02 15:04"),
		"benchmark": o.benchmarkCode,
		"dry_run":   config.DryRun,
	}).Info("Starting pipeline run")

	// S1: Universe
	universe, err := o.runUniverse(ctx)
	if err != nil {
		return o.fail(result, StageUniverse, err)
	}
	result.Universe = universe
	result.CompletedStages = append(result.CompletedStages, StageUniverse)

	from, to := collector.Window(config.Date)

	// S0: Benchmark (실패해도 0 수익률로 계속)
	result.Benchmark = o.runBenchmark(ctx, from, to)
	result.CompletedStages = append(result.CompletedStages, StageBenchmark)

	// S0: History
	fetched, err := o.runHistory(ctx, universe, from, to)
	if err != nil {
		return o.fail(result, StageHistory, err)
	}
	result.QualitySnapshot = o.qualityGate.Check(config.Date, fetched)
	result.CompletedStages = append(result.CompletedStages, StageHistory)

	// S2: Signals
	outcomes := o.signalBuilder.Build(fetched)
	result.CompletedStages = append(result.CompletedStages, StageSignals)

	// S4: Ranking
	ranked := o.ranker.Rank(universe, outcomes, result.Benchmark)
	result.Ranked = ranked
	result.CompletedStages = append(result.CompletedStages, StageRanking)

	// S5: Export
	title, body, err := o.runExport(config, ranked)
	if err != nil {
		return o.fail(result, StageExport, err)
	}
	result.Title = title
	result.CSVPath = o.output.CSVPath
	result.HTMLPath = o.output.HTMLPath
	result.CompletedStages = append(result.CompletedStages, StageExport)

	// S6: Publish (실패는 기록만)
	if config.DryRun {
		o.logger.Info("Skipping S6:Publish (dry run mode)")
	} else {
		if err := o.runPublish(ctx, title, body); err != nil {
			result.PublishError = err
		} else {
			result.Published = true
		}
		result.CompletedStages = append(result.CompletedStages, StagePublish)
	}

	// Mark success
	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"duration": result.Duration.Seconds(),
		"ranked":   ranked.Count(),
		"stages":   len(result.CompletedStages),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// fail records the failed stage and returns the wrapped error
func (o *Orchestrator) fail(result *RunResult, stage string, err error) (*RunResult, error) {
	result.Error = fmt.Errorf("%s failed: %w", stage, err)
	o.logger.WithStage(stage).WithError(err).Error("Pipeline run aborted")
	return result, result.Error
}

// runUniverse executes S1: Universe selection
func (o *Orchestrator) runUniverse(ctx context.Context) (*contracts.Universe, error) {
	o.logger.Info("Running S1: Universe selection")

	universe, err := o.selector.Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("universe select: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"listed":   universe.TotalCount,
		"eligible": universe.Count(),
		"excluded": len(universe.Excluded),
	}).Info("S1 completed")

	return universe, nil
}

// runBenchmark executes S0: Benchmark returns
func (o *Orchestrator) runBenchmark(ctx context.Context, from, to time.Time) contracts.BenchmarkReturns {
	o.logger.WithField("code", o.benchmarkCode).Info("Running S0: Benchmark")

	fetched := o.collector.FetchBenchmark(ctx, o.benchmarkCode, from, to)
	benchmark := o.momentum.BenchmarkReturns(fetched)

	o.logger.WithFields(map[string]interface{}{
		"available": benchmark.Available,
		"return_1m": benchmark.Returns.Return1M,
		"return_3m": benchmark.Returns.Return3M,
		"return_1y": benchmark.Returns.Return1Y,
	}).Info("S0 benchmark completed")

	return benchmark
}

// runHistory executes S0: History collection
func (o *Orchestrator) runHistory(ctx context.Context, universe *contracts.Universe, from, to time.Time) ([]contracts.FetchResult, error) {
	o.logger.Info("Running S0: History collection")

	fetched, err := o.collector.FetchAll(ctx, universe.Codes(), from, to)
	if err != nil {
		return nil, fmt.Errorf("history collection: %w", err)
	}

	return fetched, nil
}

// runExport executes S5: writes the dataset and report files
func (o *Orchestrator) runExport(config RunConfig, ranked *contracts.RankedResult) (string, string, error) {
	o.logger.Info("Running S5: Export")

	if err := report.SaveCSV(o.output.CSVPath, ranked); err != nil {
		return "", "", fmt.Errorf("save dataset: %w", err)
	}

	title, body, err := report.RenderHTML(ranked, config.Date)
	if err != nil {
		return "", "", err
	}

	if o.output.HTMLPath != "" {
		if err := report.SaveHTML(o.output.HTMLPath, body); err != nil {
			return "", "", fmt.Errorf("save report: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"csv":  o.output.CSVPath,
		"html": o.output.HTMLPath,
		"rows": ranked.Count(),
	}).Info("S5 completed")

	return title, body, nil
}

// runPublish executes S6: blog posting
func (o *Orchestrator) runPublish(ctx context.Context, title, body string) error {
	o.logger.Info("Running S6: Publish")

	if err := o.publisher.Publish(ctx, title, body); err != nil {
		o.logger.WithStage(StagePublish).WithError(err).Warn("Publishing failed, report files are kept")
		return err
	}

	o.logger.Info("S6 completed")
	return nil
}

// NewRunID returns a run identifier based on the KST timestamp
func NewRunID(t time.Time) string {
	return "run_" + t.In(logger.KST).Format("20060102_150405")
}
