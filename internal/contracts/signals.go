package contracts

// PeriodReturns holds simple returns for display (fractions, 0.0532 = 5.32%)
type PeriodReturns struct {
	Return1M float64 `json:"return_1m"`
	Return3M float64 `json:"return_3m"`
	Return1Y float64 `json:"return_1y"`
}

// ScoreRecord is the momentum result of one instrument
// ⭐ SSOT: S2 → S4 모멘텀 점수 전달
type ScoreRecord struct {
	Code           string        `json:"code"`
	WeightedReturn float64       `json:"weighted_return"`
	Returns        PeriodReturns `json:"returns"`
}

// ScoreOutcome is success(ScoreRecord) | failure(reason) for one instrument
type ScoreOutcome struct {
	Code   string       `json:"code"`
	Record *ScoreRecord `json:"record,omitempty"`
	Err    error        `json:"-"`
}

// Valid reports whether the outcome carries a weighted return
func (o ScoreOutcome) Valid() bool {
	return o.Err == nil && o.Record != nil
}

// BenchmarkReturns are the reference ETF returns shown for context only
// 랭킹 모집단에는 포함되지 않음
type BenchmarkReturns struct {
	Code      string        `json:"code"`
	Returns   PeriodReturns `json:"returns"`
	Available bool          `json:"available"`
}
