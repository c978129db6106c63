package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/internal/report"
	"github.com/wonny/etf-rs/pkg/logger"
)

func testRows() []contracts.RankedRow {
	return []contracts.RankedRow{
		{Code: "069500", Name: "KODEX 200", Price: 35210, Volume: 100,
			Returns: contracts.PeriodReturns{Return1M: 0.01, Return3M: 0.02, Return1Y: 0.03}, RSRating: 50},
		{Code: "005930", Name: "TIGER 반도체", Price: 12000, Volume: 300,
			Returns: contracts.PeriodReturns{Return1M: 0.0532, Return3M: -0.01, Return1Y: 0.5}, RSRating: 99},
		{Code: "102110", Name: "ARIRANG 200", Price: 9000, Volume: 200,
			Returns: contracts.PeriodReturns{Return1M: -0.02, Return3M: 0.04, Return1Y: 0.1}, RSRating: 1},
	}
}

func writeDataset(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "etf_data.csv")
	require.NoError(t, report.SaveCSV(path, &contracts.RankedResult{Rows: testRows()}))
	return path
}

func codesOf(rows []contracts.RankedRow) []string {
	codes := make([]string, len(rows))
	for i, r := range rows {
		codes[i] = r.Code
	}
	return codes
}

func TestSortRows(t *testing.T) {
	tests := []struct {
		key, order string
		wantKey    string
		wantOrder  string
		want       []string
	}{
		{"", "", "rs", "desc", []string{"005930", "069500", "102110"}},
		{"rs", "asc", "rs", "asc", []string{"102110", "069500", "005930"}},
		{"price", "desc", "price", "desc", []string{"069500", "005930", "102110"}},
		{"1m", "asc", "1m", "asc", []string{"102110", "069500", "005930"}},
		{"NAME", "asc", "name", "asc", []string{"102110", "069500", "005930"}},
		{"bogus", "asc", "rs", "desc", []string{"005930", "069500", "102110"}},
		{"volume", "sideways", "volume", "desc", []string{"005930", "102110", "069500"}},
	}

	for _, tt := range tests {
		t.Run(tt.key+"_"+tt.order, func(t *testing.T) {
			rows := testRows()
			key, order := SortRows(rows, tt.key, tt.order)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantOrder, order)
			assert.Equal(t, tt.want, codesOf(rows))
		})
	}
}

func TestSortRows_TieBreakByCode(t *testing.T) {
	rows := []contracts.RankedRow{
		{Code: "300000", RSRating: 70},
		{Code: "100000", RSRating: 70},
		{Code: "200000", RSRating: 70},
	}

	SortRows(rows, "rs", "desc")
	assert.Equal(t, []string{"100000", "200000", "300000"}, codesOf(rows))
}

func TestGetDashboard(t *testing.T) {
	h := NewDashboardHandler(writeDataset(t), logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/?sort=rs&order=desc", nil)
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, "분석 종목: 3개", doc.Find("p.count").Text())

	rows := doc.Find("#ranking tbody tr")
	require.Equal(t, 3, rows.Length())

	first := rows.Eq(0).Find("td")
	assert.Equal(t, "005930", first.Eq(0).Text())
	assert.Equal(t, "12,000", first.Eq(2).Text())
	assert.Equal(t, "5.32%", first.Eq(4).Text())
	assert.Equal(t, "99", first.Eq(7).Text())
	assert.True(t, first.Eq(7).HasClass("strong"))

	href, _ := first.Eq(8).Find("a").Attr("href")
	assert.Equal(t, "https://finance.naver.com/item/fchart.naver?code=005930", href)
	assert.Equal(t, "📈 네이버 금융", first.Eq(8).Find("a").Text())

	assert.False(t, rows.Eq(2).Find("td").Eq(7).HasClass("strong"))

	// 현재 정렬 열은 반대 방향 링크
	rsHref, _ := doc.Find("thead th a").Eq(7).Attr("href")
	assert.Equal(t, "?sort=rs&order=asc", rsHref)
	assert.Contains(t, doc.Find("thead th a").Eq(7).Text(), "▼")
}

func TestGetDashboard_Waiting(t *testing.T) {
	h := NewDashboardHandler(filepath.Join(t.TempDir(), "missing.csv"), logger.Nop())

	rec := httptest.NewRecorder()
	h.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, WaitingMessage, strings.TrimSpace(doc.Find(".warning").Text()))
	assert.Equal(t, 0, doc.Find("#ranking").Length())
}

func TestGetRanking(t *testing.T) {
	h := NewDashboardHandler(writeDataset(t), logger.Nop())

	rec := httptest.NewRecorder()
	h.GetRanking(rec, httptest.NewRequest(http.MethodGet, "/api/ranking?sort=code&order=asc", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                  `json:"success"`
		Count   int                   `json:"count"`
		Sort    string                `json:"sort"`
		Order   string                `json:"order"`
		Data    []contracts.RankedRow `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "code", body.Sort)
	assert.Equal(t, "asc", body.Order)
	assert.Equal(t, []string{"005930", "069500", "102110"}, codesOf(body.Data))
	assert.Equal(t, 0.0532, body.Data[0].Returns.Return1M)
}

func TestGetRanking_Waiting(t *testing.T) {
	h := NewDashboardHandler(filepath.Join(t.TempDir(), "missing.csv"), logger.Nop())

	rec := httptest.NewRecorder()
	h.GetRanking(rec, httptest.NewRequest(http.MethodGet, "/api/ranking", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, WaitingMessage, body["message"])
}
