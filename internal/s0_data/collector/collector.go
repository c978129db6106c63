package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/internal/s2_signals"
	"github.com/wonny/etf-rs/pkg/logger"
)

// Collector fetches daily close history for the benchmark and the universe
// ⭐ SSOT: 가격 이력 수집은 이 패키지에서만
type Collector struct {
	source contracts.HistorySource
	config Config
	logger *logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// Config holds collector configuration
type Config struct {
	BatchSize  int           // N건 요청마다 휴식
	BatchPause time.Duration // 휴식 시간 (고정, 지수 백오프 아님)
	Workers    int           // 동시 요청 수 (1 = 순차)
}

// DefaultConfig returns the sequential, 50-per-batch configuration
func DefaultConfig() Config {
	return Config{
		BatchSize:  50,
		BatchPause: 500 * time.Millisecond,
		Workers:    1,
	}
}

// NewCollector creates a new Collector instance
func NewCollector(source contracts.HistorySource, config Config, log *logger.Logger) *Collector {
	defaults := DefaultConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}

	return &Collector{
		source: source,
		config: config,
		logger: log.WithField("module", "collector"),
		sleep:  sleepContext,
	}
}

// Window returns the trailing one-year fetch window ending at now
func Window(now time.Time) (from, to time.Time) {
	return now.AddDate(-1, 0, 0), now
}

// FetchBenchmark fetches the benchmark history
// 벤치마크 실패는 치명적이지 않음: 호출 측에서 0 수익률로 대체
func (c *Collector) FetchBenchmark(ctx context.Context, code string, from, to time.Time) contracts.FetchResult {
	result := c.fetchOne(ctx, code, from, to)
	if !result.OK() {
		c.logger.WithStock(code).WithError(result.Err).Warn("Benchmark unavailable, returns default to zero")
	}
	return result
}

// FetchAll fetches history for every code, one result per code in input order
// 종목별 실패는 결과에 기록하고 배치는 계속 진행
func (c *Collector) FetchAll(ctx context.Context, codes []string, from, to time.Time) ([]contracts.FetchResult, error) {
	results := make([]contracts.FetchResult, len(codes))

	c.logger.WithFields(map[string]interface{}{
		"stock_count": len(codes),
		"from":        from.Format("2006-01-02"),
		"to":          to.Format("2006-01-02"),
		"workers":     c.config.Workers,
	}).Info("Starting history collection")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.Workers)

	for i, code := range codes {
		if i > 0 && i%c.config.BatchSize == 0 {
			c.logger.WithFields(map[string]interface{}{
				"fetched": i,
				"pause":   c.config.BatchPause,
			}).Debug("Pausing between batches")

			if err := c.sleep(gctx, c.config.BatchPause); err != nil {
				c.cancelRemaining(results, codes, i, err)
				break
			}
		}

		i, code := i, code
		g.Go(func() error {
			// 종목별 에러는 errgroup 으로 전파하지 않음
			results[i] = c.fetchOne(gctx, code, from, to)
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("history collection interrupted: %w", err)
	}

	successCount := 0
	for _, r := range results {
		if r.OK() {
			successCount++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": successCount,
		"failed":  len(results) - successCount,
		"total":   len(results),
	}).Info("History collection completed")

	return results, nil
}

// fetchOne fetches a single instrument and classifies the outcome
func (c *Collector) fetchOne(ctx context.Context, code string, from, to time.Time) contracts.FetchResult {
	history, err := c.source.FetchHistory(ctx, code, from, to)
	if err != nil {
		c.logger.WithStock(code).WithError(err).Warn("Failed to fetch history")
		return contracts.FetchResult{Code: code, Err: err}
	}

	// 점수 계산 창(240거래일)과 같은 기준
	if history.Len() < s2_signals.MinHistory {
		c.logger.WithStock(code).WithField("sessions", history.Len()).Debug("Insufficient history, skipping")
		return contracts.FetchResult{
			Code: code,
			Err:  fmt.Errorf("%w: %d < %d sessions", contracts.ErrInsufficientHistory, history.Len(), s2_signals.MinHistory),
		}
	}

	return contracts.FetchResult{Code: code, History: history}
}

// cancelRemaining marks undispatched codes with the interruption error
func (c *Collector) cancelRemaining(results []contracts.FetchResult, codes []string, from int, err error) {
	for j := from; j < len(codes); j++ {
		results[j] = contracts.FetchResult{Code: codes[j], Err: err}
	}
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsSkip reports whether a fetch error is an expected skip rather than a failure
func IsSkip(err error) bool {
	return errors.Is(err, contracts.ErrInsufficientHistory)
}
