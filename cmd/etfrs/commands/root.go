package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/etf-rs/internal/brain"
	"github.com/wonny/etf-rs/pkg/config"
	"github.com/wonny/etf-rs/pkg/logger"
)

var (
	// Global flags
	env     string
	verbose bool

	// Batch flags
	dryRun  bool
	workers int
)

// rootCmd runs one ranking batch when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "etfrs",
	Short: "주식형 ETF 상대강도(RS) 모멘텀 랭킹",
	Long: `ETF RS Ranking CLI

국내 상장 주식형 ETF의 가중 모멘텀을 계산하고 1~99점 상대강도(RS)로 순위를 매깁니다.
인자 없이 실행하면 배치를 한 번 실행합니다.
  S1 유니버스 → S0 벤치마크/이력 수집 → S2 모멘텀 → S4 랭킹 → S5 CSV/HTML → S6 블로그 포스팅

Usage:
  go run ./cmd/etfrs [command]

Examples:
  go run ./cmd/etfrs
  go run ./cmd/etfrs --dry-run
  go run ./cmd/etfrs dashboard --port 8501
  go run ./cmd/etfrs schedule`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runBatch,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "블로그 포스팅 생략")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "동시 수집 수 (0 = FETCH_WORKERS)")
}

// loadConfig loads configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	if env != "" {
		if err := os.Setenv("ENV", env); err != nil {
			return nil, fmt.Errorf("set ENV: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Pipeline.Workers = workers
	}

	log := logger.New(cfg)

	ctx, stop := signalContext()
	defer stop()

	orchestrator := newOrchestrator(cfg, log)

	now := time.Now().In(logger.KST)
	PrintRunHeader(brain.NewRunID(now), now, cfg)

	result, err := orchestrator.Run(ctx, brain.RunConfig{
		Date:   now,
		DryRun: dryRun,
	})
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintRunSummary(result, 10, cfg.Blogger.Enabled())
	return nil
}
