package contracts

import "time"

// PriceHistory is a chronological daily close series (most recent last)
// ⭐ SSOT: S0 → S2 가격 이력 전달
type PriceHistory struct {
	Code   string    `json:"code"`
	Closes []float64 `json:"closes"`
}

// Len returns the number of sessions
func (h *PriceHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Closes)
}

// FetchResult is the per-instrument outcome of the history fetch
// Err != nil 이면 History 는 nil 이고 해당 종목은 랭킹에서 제외
type FetchResult struct {
	Code    string        `json:"code"`
	History *PriceHistory `json:"history,omitempty"`
	Err     error         `json:"-"`
}

// OK reports whether the fetch produced a usable history
func (r FetchResult) OK() bool {
	return r.Err == nil && r.History != nil
}

// DataQualitySnapshot summarizes how much of the universe produced usable history
// ⭐ SSOT: S0 → S2 품질 요약 (로그 및 실행 결과용, 배치를 중단하지 않음)
type DataQualitySnapshot struct {
	Date         time.Time          `json:"date"`
	TotalStocks  int                `json:"total_stocks"`
	ValidStocks  int                `json:"valid_stocks"`
	Insufficient int                `json:"insufficient"` // 거래일수 부족
	Failed       int                `json:"failed"`       // 수집 실패
	Coverage     map[string]float64 `json:"coverage"`
	QualityScore float64            `json:"quality_score"` // 0.0 ~ 1.0
	Passed       bool               `json:"passed"`
}

// IsValid reports whether at least one instrument can be ranked
func (d *DataQualitySnapshot) IsValid() bool {
	return d.ValidStocks > 0
}
