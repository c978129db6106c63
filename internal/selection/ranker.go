package selection

import (
	"sort"
	"time"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/pkg/logger"
)

// Ranker merges scores with listing metadata and assigns RS ratings
// ⭐ SSOT: S4 랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewRanker creates a new ranker
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{
		logger: log,
		now:    func() time.Time { return time.Now().In(logger.KST) },
	}
}

// Rank builds the final RS table
// 점수 또는 메타데이터가 없는 종목은 Skipped 에 사유와 함께 기록
func (r *Ranker) Rank(universe *contracts.Universe, outcomes []contracts.ScoreOutcome, benchmark contracts.BenchmarkReturns) *contracts.RankedResult {
	result := &contracts.RankedResult{
		GeneratedAt: r.now(),
		Rows:        make([]contracts.RankedRow, 0, len(outcomes)),
		Benchmark:   benchmark,
		Skipped:     make(map[string]string),
	}

	meta := make(map[string]contracts.Instrument)
	if universe != nil {
		for _, inst := range universe.Instruments {
			meta[inst.Code] = inst
		}
	}

	ranked := make(map[string]bool, len(outcomes))
	for _, o := range outcomes {
		if !o.Valid() {
			result.Skipped[o.Code] = skipReason(o.Err)
			continue
		}

		inst, ok := meta[o.Code]
		if !ok {
			result.Skipped[o.Code] = "메타데이터 없음"
			continue
		}
		if ranked[o.Code] {
			continue
		}
		ranked[o.Code] = true

		result.Rows = append(result.Rows, contracts.RankedRow{
			Code:           o.Code,
			Name:           inst.Name,
			Price:          inst.Price,
			Volume:         inst.Volume,
			Returns:        o.Record.Returns,
			WeightedReturn: o.Record.WeightedReturn,
		})
	}

	// 같은 코드에 유효한 점수가 있으면 제외 사유는 남기지 않음
	for code := range ranked {
		delete(result.Skipped, code)
	}

	values := make([]float64, len(result.Rows))
	for i, row := range result.Rows {
		values[i] = row.WeightedReturn
	}
	for i, pct := range PercentileRank(values) {
		result.Rows[i].RSRating = RSRating(pct)
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.RSRating != b.RSRating {
			return a.RSRating > b.RSRating
		}
		return a.Code < b.Code
	})

	fields := map[string]interface{}{
		"ranked":  len(result.Rows),
		"skipped": len(result.Skipped),
	}
	if len(result.Rows) > 0 {
		fields["top_code"] = result.Rows[0].Code
		fields["top_rs"] = result.Rows[0].RSRating
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return result
}

func skipReason(err error) string {
	if err == nil {
		return "점수 없음"
	}
	return err.Error()
}
