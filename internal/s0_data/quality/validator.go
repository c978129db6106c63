package quality

import (
	"time"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/internal/s0_data/collector"
	"github.com/wonny/etf-rs/pkg/logger"
)

// QualityGate summarizes history coverage after collection
type QualityGate struct {
	config Config
	logger *logger.Logger
}

// Config holds quality gate thresholds
type Config struct {
	MinHistoryCoverage float64 // 0.5 미만이면 경고
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{MinHistoryCoverage: 0.5}
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config, log *logger.Logger) *QualityGate {
	return &QualityGate{
		config: config,
		logger: log.WithField("module", "quality"),
	}
}

// Check builds a snapshot from the fetch results of one run
// 품질 미달은 경고만 남김: 랭킹은 유효 종목만으로 계속 진행
func (g *QualityGate) Check(date time.Time, results []contracts.FetchResult) *contracts.DataQualitySnapshot {
	snapshot := &contracts.DataQualitySnapshot{
		Date:        date,
		TotalStocks: len(results),
		Coverage:    make(map[string]float64),
	}

	for _, r := range results {
		switch {
		case r.OK():
			snapshot.ValidStocks++
		case collector.IsSkip(r.Err):
			snapshot.Insufficient++
		default:
			snapshot.Failed++
		}
	}

	snapshot.Coverage["history"] = ratio(snapshot.ValidStocks, snapshot.TotalStocks)
	snapshot.Coverage["fetched"] = ratio(snapshot.TotalStocks-snapshot.Failed, snapshot.TotalStocks)
	snapshot.QualityScore = snapshot.Coverage["history"]
	snapshot.Passed = snapshot.IsValid() && snapshot.QualityScore >= g.config.MinHistoryCoverage

	fields := map[string]interface{}{
		"total":        snapshot.TotalStocks,
		"valid":        snapshot.ValidStocks,
		"insufficient": snapshot.Insufficient,
		"failed":       snapshot.Failed,
		"score":        snapshot.QualityScore,
	}
	if snapshot.Passed {
		g.logger.WithFields(fields).Info("Data quality check passed")
	} else {
		g.logger.WithFields(fields).Warn("Data quality below threshold")
	}

	return snapshot
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
