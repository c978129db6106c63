package s1_universe

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/pkg/logger"
)

// DefaultTabCodes are the equity-style ETF tab codes
// 1: 국내 시장지수, 2: 국내 업종/테마, 4: 해외 주식
var DefaultTabCodes = []int{1, 2, 4}

// DefaultExcludeKeywords mark bond, commodity, currency, leveraged, inverse and total-return products
var DefaultExcludeKeywords = []string{
	"채권", "국고채", "금리", "원유", "골드", "금선물", "은선물", "달러", "인버스", "레버리지", "TR",
}

// Config holds universe filter criteria
type Config struct {
	TabCodes        []int    // 허용 분류 코드
	ExcludeKeywords []string // 종목명 제외 키워드 (부분 일치, 대소문자 구분)
}

// DefaultConfig returns the equity-style ETF filter
func DefaultConfig() Config {
	return Config{
		TabCodes:        DefaultTabCodes,
		ExcludeKeywords: DefaultExcludeKeywords,
	}
}

// Selector constructs the rankable ETF universe
// ⭐ SSOT: S1 유니버스 선정은 여기서만
type Selector struct {
	source  contracts.ListingSource
	tabs    map[int]bool
	exclude *regexp.Regexp
	logger  *logger.Logger
}

// NewSelector creates a new universe selector
func NewSelector(source contracts.ListingSource, config Config, log *logger.Logger) *Selector {
	tabs := make(map[int]bool, len(config.TabCodes))
	for _, code := range config.TabCodes {
		tabs[code] = true
	}

	return &Selector{
		source:  source,
		tabs:    tabs,
		exclude: compileKeywords(config.ExcludeKeywords),
		logger:  log.WithField("module", "s1_universe"),
	}
}

// compileKeywords joins keywords into one OR'ed pattern (nil when empty)
func compileKeywords(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// Select fetches the listing and filters it
// 목록 수집 실패는 ErrDataUnavailable (재시도 없음)
func (s *Selector) Select(ctx context.Context) (*contracts.Universe, error) {
	items, err := s.source.FetchETFList(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch ETF list: %w", contracts.ErrDataUnavailable, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: ETF list is empty", contracts.ErrDataUnavailable)
	}

	universe := s.Filter(items)

	s.logger.WithFields(map[string]interface{}{
		"listed":   universe.TotalCount,
		"selected": universe.Count(),
		"excluded": len(universe.Excluded),
	}).Info("Universe selected")

	return universe, nil
}

// Filter applies the tab-code allow-set and name exclusion pattern
func (s *Selector) Filter(items []contracts.ListingItem) *contracts.Universe {
	universe := &contracts.Universe{
		Date:        time.Now().In(logger.KST),
		Instruments: make([]contracts.Instrument, 0, len(items)),
		Excluded:    make(map[string]string),
		TotalCount:  len(items),
	}

	for _, item := range items {
		if reason := s.checkExclusion(item); reason != "" {
			universe.Excluded[item.Code] = reason
			continue
		}

		universe.Instruments = append(universe.Instruments, contracts.Instrument{
			Code:   item.Code,
			Name:   item.Name,
			Price:  item.Price,
			Volume: item.Volume,
		})
	}

	return universe
}

// checkExclusion returns the exclusion reason, or "" when the item is eligible
func (s *Selector) checkExclusion(item contracts.ListingItem) string {
	if !s.tabs[item.TabCode] {
		return fmt.Sprintf("분류 제외 (tab=%d)", item.TabCode)
	}

	if s.exclude != nil {
		if kw := s.exclude.FindString(item.Name); kw != "" {
			return fmt.Sprintf("제외 키워드 (%s)", kw)
		}
	}

	return ""
}
