package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/etf-rs/internal/api"
	"github.com/wonny/etf-rs/internal/api/handlers"
	"github.com/wonny/etf-rs/pkg/logger"
)

// dashboardCmd serves the ranking dashboard
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "랭킹 대시보드 서버 시작",
	Long: `마지막 배치가 저장한 CSV 를 읽어 정렬 가능한 표로 보여줍니다.
파일이 아직 없으면 대기 메시지를 표시합니다.

Endpoints:
  GET /                  - 랭킹 표 (?sort=rs&order=desc)
  GET /api/ranking       - 랭킹 JSON
  GET /health            - Health check

Example:
  go run ./cmd/etfrs dashboard
  go run ./cmd/etfrs dashboard --port 8080`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

var (
	dashboardPort string
)

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().StringVar(&dashboardPort, "port", "", "대시보드 포트 (기본: DASHBOARD_PORT)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dashboardPort != "" {
		cfg.DashboardPort = dashboardPort
	}

	log := logger.New(cfg)

	dashboard := handlers.NewDashboardHandler(cfg.Output.CSVPath, log)
	router := api.NewRouter(dashboard, log)
	server := api.New(cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	PrintSuccess(fmt.Sprintf("Dashboard running on http://localhost:%s", cfg.DashboardPort))
	PrintKeyValue("Dataset", cfg.Output.CSVPath, 8)
	PrintInfo("Press Ctrl+C to stop")

	ctx, stop := signalContext()
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Dashboard stopped")
	return nil
}
