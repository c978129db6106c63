package contracts

import "time"

// RankedRow is one row of the final RS table
// ⭐ SSOT: S4 → S5 랭킹 결과 전달
type RankedRow struct {
	Code           string        `json:"code"`
	Name           string        `json:"name"`
	Price          float64       `json:"price"`
	Volume         int64         `json:"volume"`
	Returns        PeriodReturns `json:"returns"`
	WeightedReturn float64       `json:"weighted_return"`
	RSRating       int           `json:"rs_rating"` // 1 ~ 99
}

// IsStrong reports whether the RS rating is in the highlighted band
func (r *RankedRow) IsStrong() bool {
	return r.RSRating >= StrongRSRating
}

// StrongRSRating is the RS threshold highlighted in reports (80점 이상 강한 추세)
const StrongRSRating = 80

// RankedResult is the merged and sorted RS table
type RankedResult struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Rows        []RankedRow       `json:"rows"`
	Benchmark   BenchmarkReturns  `json:"benchmark"`
	Skipped     map[string]string `json:"skipped,omitempty"` // 제외 종목: 사유
}

// Count returns the number of ranked rows
func (r *RankedResult) Count() int {
	return len(r.Rows)
}
