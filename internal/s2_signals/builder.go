package s2_signals

import (
	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/pkg/logger"
)

// Builder turns fetch results into per-instrument score outcomes
// ⭐ SSOT: S0 → S2 점수 산출 오케스트레이션은 여기서만
type Builder struct {
	momentum *MomentumCalculator
	logger   *logger.Logger
}

// NewBuilder creates a new signal builder
func NewBuilder(momentum *MomentumCalculator, log *logger.Logger) *Builder {
	return &Builder{
		momentum: momentum,
		logger:   log,
	}
}

// Build scores every fetch result, one outcome per input in the same order
// 수집 실패 종목은 원래 에러를 그대로 유지
func (b *Builder) Build(results []contracts.FetchResult) []contracts.ScoreOutcome {
	outcomes := make([]contracts.ScoreOutcome, len(results))

	successCount := 0
	for i, r := range results {
		outcomes[i] = b.score(r)
		if outcomes[i].Valid() {
			successCount++
		}
	}

	b.logger.WithFields(map[string]interface{}{
		"total":   len(results),
		"success": successCount,
		"failed":  len(results) - successCount,
	}).Info("Momentum scoring completed")

	return outcomes
}

// score calculates the outcome of a single instrument
func (b *Builder) score(r contracts.FetchResult) contracts.ScoreOutcome {
	if !r.OK() {
		err := r.Err
		if err == nil {
			err = contracts.ErrMalformedHistory
		}
		return contracts.ScoreOutcome{Code: r.Code, Err: err}
	}

	record, err := b.momentum.Calculate(r.Code, r.History.Closes)
	if err != nil {
		b.logger.WithStock(r.Code).WithError(err).Debug("Momentum not available")
		return contracts.ScoreOutcome{Code: r.Code, Err: err}
	}

	return contracts.ScoreOutcome{Code: r.Code, Record: &record}
}
