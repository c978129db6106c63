package commands

import (
	"github.com/wonny/etf-rs/internal/brain"
	"github.com/wonny/etf-rs/internal/external/blogger"
	"github.com/wonny/etf-rs/internal/external/naver"
	"github.com/wonny/etf-rs/internal/s0_data/collector"
	"github.com/wonny/etf-rs/internal/s0_data/quality"
	"github.com/wonny/etf-rs/internal/s1_universe"
	"github.com/wonny/etf-rs/internal/s2_signals"
	"github.com/wonny/etf-rs/internal/selection"
	"github.com/wonny/etf-rs/pkg/config"
	"github.com/wonny/etf-rs/pkg/httputil"
	"github.com/wonny/etf-rs/pkg/logger"
)

// newOrchestrator wires the pipeline components from configuration
// ⭐ SSOT: 파이프라인 구성은 여기서만
func newOrchestrator(cfg *config.Config, log *logger.Logger) *brain.Orchestrator {
	// 1. External clients
	httpClient := httputil.New(log).WithRateLimit(cfg.Naver.RateLimit)
	naverClient := naver.NewClient(httpClient, cfg.Naver, log)
	publisher := blogger.New(cfg.Blogger, log)

	// 2. Stage components
	selector := s1_universe.NewSelector(naverClient, s1_universe.DefaultConfig(), log)
	col := collector.NewCollector(naverClient, collector.Config{
		BatchSize:  cfg.Pipeline.BatchSize,
		BatchPause: cfg.Pipeline.BatchPause,
		Workers:    cfg.Pipeline.Workers,
	}, log)
	qualityGate := quality.NewQualityGate(quality.DefaultConfig(), log)
	momentum := s2_signals.NewMomentumCalculator(log)
	signalBuilder := s2_signals.NewBuilder(momentum, log)
	ranker := selection.NewRanker(log)

	return brain.NewOrchestrator(
		selector,
		col,
		qualityGate,
		momentum,
		signalBuilder,
		ranker,
		publisher,
		cfg.Pipeline.BenchmarkCode,
		cfg.Output,
		log,
	)
}
