package contracts

import (
	"context"
	"time"
)

// ListingSource provides the raw ETF listing (S1 input)
// ⭐ SSOT: ETF 목록 수집 인터페이스
type ListingSource interface {
	FetchETFList(ctx context.Context) ([]ListingItem, error)
}

// HistorySource provides daily close history (S0 input)
// ⭐ SSOT: 일봉 이력 수집 인터페이스
type HistorySource interface {
	FetchHistory(ctx context.Context, code string, from, to time.Time) (*PriceHistory, error)
}

// Publisher posts the rendered report to an external blog
// 인증 정보가 없으면 아무것도 하지 않고 nil 반환
type Publisher interface {
	Publish(ctx context.Context, title, htmlBody string) error
}
