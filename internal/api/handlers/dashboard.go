package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/internal/report"
	"github.com/wonny/etf-rs/pkg/logger"
)

// WaitingMessage is shown until the first batch writes the dataset
const WaitingMessage = "데이터 파일이 아직 생성되지 않았습니다. 배치 업데이트를 기다려 주세요."

// DashboardHandler serves the ranking dataset
// ⭐ SSOT: 대시보드 핸들러는 이 구조체에서만
type DashboardHandler struct {
	csvPath string
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(csvPath string, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		csvPath: csvPath,
		logger:  log,
	}
}

// sortColumn is a sortable dashboard column
type sortColumn struct {
	Key   string
	Label string
	less  func(a, b *contracts.RankedRow) bool
}

// columns in display order (차트 링크 열은 정렬 대상 아님)
var columns = []sortColumn{
	{"code", "코드", func(a, b *contracts.RankedRow) bool { return a.Code < b.Code }},
	{"name", "종목명", func(a, b *contracts.RankedRow) bool { return a.Name < b.Name }},
	{"price", "현재가(원)", func(a, b *contracts.RankedRow) bool { return a.Price < b.Price }},
	{"volume", "거래량", func(a, b *contracts.RankedRow) bool { return a.Volume < b.Volume }},
	{"1m", "1개월", func(a, b *contracts.RankedRow) bool { return a.Returns.Return1M < b.Returns.Return1M }},
	{"3m", "3개월", func(a, b *contracts.RankedRow) bool { return a.Returns.Return3M < b.Returns.Return3M }},
	{"1y", "1년", func(a, b *contracts.RankedRow) bool { return a.Returns.Return1Y < b.Returns.Return1Y }},
	{"rs", "상대강도", func(a, b *contracts.RankedRow) bool { return a.RSRating < b.RSRating }},
}

const (
	defaultSort  = "rs"
	defaultOrder = "desc"
)

// SortRows sorts rows in place by column key; unknown keys fall back to RS descending
// 동률은 코드 오름차순
func SortRows(rows []contracts.RankedRow, key, order string) (string, string) {
	col, ok := findColumn(key)
	if !ok {
		col, _ = findColumn(defaultSort)
		order = defaultOrder
	}
	if order != "asc" {
		order = "desc"
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		switch {
		case col.less(a, b):
			return order == "asc"
		case col.less(b, a):
			return order == "desc"
		default:
			return a.Code < b.Code
		}
	})

	return col.Key, order
}

func findColumn(key string) (sortColumn, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, c := range columns {
		if c.Key == key {
			return c, true
		}
	}
	return sortColumn{}, false
}

// GetDashboard renders the sortable ranking table
// GET /?sort=rs&order=desc
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{Columns: make([]headerView, 0, len(columns))}

	rows, err := report.LoadCSV(h.csvPath)
	switch {
	case errors.Is(err, report.ErrNoDataset):
		view.Waiting = WaitingMessage
	case err != nil:
		h.logger.WithError(err).Error("Failed to load dataset")
		http.Error(w, "failed to load dataset", http.StatusInternalServerError)
		return
	default:
		key, order := SortRows(rows, r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
		view.Count = len(rows)
		view.Rows = toRowViews(rows)
		for _, c := range columns {
			next := "desc"
			if c.Key == key && order == "desc" {
				next = "asc"
			}
			view.Columns = append(view.Columns, headerView{
				Label:  c.Label,
				Href:   "?sort=" + c.Key + "&order=" + next,
				Active: c.Key == key,
				Order:  order,
			})
		}
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		h.logger.WithError(err).Error("Failed to render dashboard")
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GetRanking returns the dataset rows as JSON
// GET /api/ranking?sort=rs&order=desc
func (h *DashboardHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	rows, err := report.LoadCSV(h.csvPath)
	if errors.Is(err, report.ErrNoDataset) {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": WaitingMessage,
		})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load dataset")
		respondError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}

	key, order := SortRows(rows, r.URL.Query().Get("sort"), r.URL.Query().Get("order"))

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(rows),
		"sort":    key,
		"order":   order,
		"data":    rows,
	})
}

type dashboardView struct {
	Waiting string
	Count   int
	Columns []headerView
	Rows    []dashboardRow
}

type headerView struct {
	Label  string
	Href   string
	Active bool
	Order  string
}

type dashboardRow struct {
	Code     string
	Name     string
	Price    string
	Volume   string
	Return1M string
	Return3M string
	Return1Y string
	RSRating int
	Strong   bool
	ChartURL string
}

func toRowViews(rows []contracts.RankedRow) []dashboardRow {
	views := make([]dashboardRow, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		views = append(views, dashboardRow{
			Code:     contracts.PadCode(row.Code),
			Name:     row.Name,
			Price:    report.FormatPrice(row.Price),
			Volume:   report.FormatVolume(row.Volume),
			Return1M: report.FormatPercent(row.Returns.Return1M),
			Return3M: report.FormatPercent(row.Returns.Return3M),
			Return1Y: report.FormatPercent(row.Returns.Return1Y),
			RSRating: row.RSRating,
			Strong:   row.IsStrong(),
			ChartURL: contracts.ChartURL(row.Code),
		})
	}
	return views
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>ETF 상대강도 대시보드</title>
<style>
body { font-family: 'Helvetica Neue', Arial, sans-serif; color: #333; margin: 24px; }
table { border-collapse: collapse; width: 100%; }
th, td { padding: 6px 10px; border-bottom: 1px solid #eee; text-align: right; }
th a { color: #2c3e50; text-decoration: none; }
td.name { text-align: left; }
.strong { color: #e74c3c; font-weight: bold; }
.warning { padding: 15px; background-color: #fff3cd; border-left: 4px solid #f1c40f; }
</style>
</head>
<body>
<h1>📊 대한민국 상장 주식형 ETF 모멘텀 대시보드</h1>
<p>마크 미너비니의 상대강도를 기준으로 국내 상장 주식형 ETF의 추세를 분석한 결과입니다.
데이터는 <strong>매일 장 마감 후 자동으로 업데이트</strong> 됩니다.</p>
{{if .Waiting}}
<div class="warning">{{.Waiting}}</div>
{{else}}
<p class="count">분석 종목: {{.Count}}개</p>
<table id="ranking">
<thead>
<tr>{{range .Columns}}<th><a href="{{.Href}}">{{.Label}}{{if .Active}}{{if eq .Order "asc"}} ▲{{else}} ▼{{end}}{{end}}</a></th>{{end}}<th>차트 보기</th></tr>
</thead>
<tbody>{{range .Rows}}
<tr>
<td>{{.Code}}</td>
<td class="name">{{.Name}}</td>
<td>{{.Price}}</td>
<td>{{.Volume}}</td>
<td>{{.Return1M}}</td>
<td>{{.Return3M}}</td>
<td>{{.Return1Y}}</td>
<td{{if .Strong}} class="strong"{{end}} title="1~99점. 80 이상이면 강력한 추세">{{.RSRating}}</td>
<td><a href="{{.ChartURL}}" target="_blank">📈 네이버 금융</a></td>
</tr>{{end}}
</tbody>
</table>
{{end}}
</body>
</html>
`))
