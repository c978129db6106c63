package s2_signals

import (
	"fmt"
	"math"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/pkg/logger"
)

// 거래일 기준 오프셋 (가장 최근 종가 = -1)
const (
	Offset1M  = 21
	Offset3M  = 63
	Offset6M  = 126
	Offset9M  = 189
	Offset12M = 240

	// MinHistory is the number of closes required for scoring
	MinHistory = Offset12M
)

// momentumWeights weights 3M performance at 40% and 6/9/12M at 20% each
var momentumWeights = []struct {
	offset int
	weight float64
}{
	{Offset3M, 0.4},
	{Offset6M, 0.2},
	{Offset9M, 0.2},
	{Offset12M, 0.2},
}

// MomentumCalculator calculates weighted momentum and display returns
// ⭐ SSOT: 모멘텀 계산은 여기서만
type MomentumCalculator struct {
	logger *logger.Logger
}

// NewMomentumCalculator creates a new momentum calculator
func NewMomentumCalculator(log *logger.Logger) *MomentumCalculator {
	return &MomentumCalculator{
		logger: log,
	}
}

// Calculate scores one instrument from its chronological closes
func (c *MomentumCalculator) Calculate(code string, closes []float64) (contracts.ScoreRecord, error) {
	if len(closes) < MinHistory {
		return contracts.ScoreRecord{}, fmt.Errorf("%w: %d < %d sessions", contracts.ErrInsufficientHistory, len(closes), MinHistory)
	}

	current := closes[len(closes)-1]
	if !validPrice(current) {
		return contracts.ScoreRecord{}, fmt.Errorf("%w: latest close %v", contracts.ErrMalformedHistory, current)
	}

	weighted := 0.0
	for _, w := range momentumWeights {
		ret, err := periodReturn(closes, w.offset)
		if err != nil {
			return contracts.ScoreRecord{}, err
		}
		weighted += w.weight * ret
	}

	returns, err := displayReturns(closes)
	if err != nil {
		return contracts.ScoreRecord{}, err
	}

	c.logger.WithFields(map[string]interface{}{
		"code":            code,
		"weighted_return": weighted,
		"return_3m":       returns.Return3M,
	}).Debug("Calculated momentum")

	return contracts.ScoreRecord{
		Code:           code,
		WeightedReturn: weighted,
		Returns:        returns,
	}, nil
}

// PeriodReturns computes the 1M/3M/1Y display returns
// 240거래일 미만이거나 가격이 잘못되면 false
func (c *MomentumCalculator) PeriodReturns(closes []float64) (contracts.PeriodReturns, bool) {
	if len(closes) < MinHistory {
		return contracts.PeriodReturns{}, false
	}

	returns, err := displayReturns(closes)
	if err != nil {
		return contracts.PeriodReturns{}, false
	}
	return returns, true
}

// BenchmarkReturns converts the benchmark fetch into reference returns
// 수집 실패나 이력 부족이면 0 수익률 (Available=false)
func (c *MomentumCalculator) BenchmarkReturns(result contracts.FetchResult) contracts.BenchmarkReturns {
	benchmark := contracts.BenchmarkReturns{Code: result.Code}
	if !result.OK() {
		return benchmark
	}

	returns, ok := c.PeriodReturns(result.History.Closes)
	if !ok {
		c.logger.WithField("code", result.Code).Warn("Benchmark history unusable, returns default to zero")
		return benchmark
	}

	benchmark.Returns = returns
	benchmark.Available = true
	return benchmark
}

// displayReturns calculates the returns shown in reports
func displayReturns(closes []float64) (contracts.PeriodReturns, error) {
	r1m, err := periodReturn(closes, Offset1M)
	if err != nil {
		return contracts.PeriodReturns{}, err
	}
	r3m, err := periodReturn(closes, Offset3M)
	if err != nil {
		return contracts.PeriodReturns{}, err
	}
	r1y, err := periodReturn(closes, Offset12M)
	if err != nil {
		return contracts.PeriodReturns{}, err
	}

	return contracts.PeriodReturns{
		Return1M: r1m,
		Return3M: r3m,
		Return1Y: r1y,
	}, nil
}

// periodReturn calculates P0/P-offset - 1 over chronological closes
func periodReturn(closes []float64, offset int) (float64, error) {
	current := closes[len(closes)-1]
	past := closes[len(closes)-offset]

	if !validPrice(current) || !validPrice(past) {
		return 0, fmt.Errorf("%w: close at -%d is %v", contracts.ErrMalformedHistory, offset, past)
	}

	return current/past - 1, nil
}

// validPrice rejects zero, negative, NaN and Inf closes
func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
