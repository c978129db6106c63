package contracts

import "time"

// ListingItem is one raw row of the ETF listing feed
type ListingItem struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	TabCode int     `json:"tab_code"` // 분류 코드 (1: 국내 시장지수, 2: 국내 업종/테마, 4: 해외 주식 ...)
	Price   float64 `json:"price"`    // 현재가 (원)
	Volume  int64   `json:"volume"`   // 거래량 (주)
}

// Instrument is an ETF eligible for ranking
type Instrument struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

// Universe represents rankable ETFs passed from S1 to S0/S2
// ⭐ SSOT: S1 → S2 랭킹 대상 ETF 전달
type Universe struct {
	Date        time.Time         `json:"date"`
	Instruments []Instrument      `json:"instruments"`
	Excluded    map[string]string `json:"excluded"`              // 제외 종목: 사유
	TotalCount  int               `json:"total_count,omitempty"` // 원본 목록 수
}

// Codes returns instrument codes in universe order
func (u *Universe) Codes() []string {
	codes := make([]string, 0, len(u.Instruments))
	for _, inst := range u.Instruments {
		codes = append(codes, inst.Code)
	}
	return codes
}

// Count returns the number of rankable instruments
func (u *Universe) Count() int {
	return len(u.Instruments)
}
