package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/pkg/logger"
)

// TitleFormat is the blog post title, date in KST
const TitleFormat = "주식형 ETF 상대강도 모멘텀 랭킹(%s)"

// Title returns the report title for the KST date of now
func Title(now time.Time) string {
	return fmt.Sprintf(TitleFormat, now.In(logger.KST).Format("2006-01-02"))
}

var reportTemplate = template.Must(template.New("report").Parse(`
<div class="etf-container" style="font-family: 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 100%; overflow-x: auto; margin-bottom: 30px;">
    <h2 style="color: #2c3e50; border-bottom: 2px solid #3498db; padding-bottom: 10px; font-size: 1.5em;">📊 {{.Title}}</h2>
    <div class="description" style="font-size: 0.95em; color: #7f8c8d; margin-bottom: 15px; padding: 15px; background-color: #f8f9fa; border-radius: 5px; border-left: 4px solid #3498db;">
        <strong>💡 마크 미너비니 상대강도 (IBD RS Rating)</strong><br>
        최근 1년간의 가중 수익률(최근 3개월 40% 비중)을 전체 ETF 내에서 1~99점의 백분위 순위로 매긴 값입니다. (80점 이상 붉은색 강조 처리)<br><br>
        * <strong>업데이트 일시:</strong> {{.UpdatedAt}} (분석 종목: {{.Count}}개)<br>
        * <strong>벤치마크(KODEX 200):</strong> 1개월({{.Benchmark1M}}), 3개월({{.Benchmark3M}}), 1년({{.Benchmark1Y}})
    </div>
    <table border="0" class="dataframe etf-table">
        <thead>
            <tr style="text-align: right;">{{range .Header}}
                <th>{{.}}</th>{{end}}
            </tr>
        </thead>
        <tbody>{{range .Rows}}
            <tr>
                <td><a href="{{.ChartURL}}" target="_blank" style="color: #3498db; text-decoration: none; font-weight: bold;">{{.Code}}</a></td>
                <td>{{.Name}}</td>
                <td>{{.Price}}</td>
                <td>{{.Volume}}</td>
                <td>{{.Return1M}}</td>
                <td>{{.Return3M}}</td>
                <td>{{.Return1Y}}</td>
                <td>{{if .Strong}}<span style="color: #e74c3c; font-weight: bold;">{{.RSRating}}</span>{{else}}{{.RSRating}}{{end}}</td>
            </tr>{{end}}
        </tbody>
    </table>
</div>
`))

// reportView is the display form of a ranked result
type reportView struct {
	Title       string
	UpdatedAt   string
	Count       int
	Benchmark1M string
	Benchmark3M string
	Benchmark1Y string
	Header      []string
	Rows        []rowView
}

// rowView is one formatted table row
type rowView struct {
	Code     string
	ChartURL string
	Name     string
	Price    string
	Volume   string
	Return1M string
	Return3M string
	Return1Y string
	RSRating int
	Strong   bool
}

// RenderHTML builds the blog post title and body
func RenderHTML(result *contracts.RankedResult, now time.Time) (string, string, error) {
	title := Title(now)

	view := reportView{
		Title:       title,
		UpdatedAt:   now.In(logger.KST).Format("2006-01-02 15:04"),
		Count:       result.Count(),
		Benchmark1M: FormatPercent(result.Benchmark.Returns.Return1M),
		Benchmark3M: FormatPercent(result.Benchmark.Returns.Return3M),
		Benchmark1Y: FormatPercent(result.Benchmark.Returns.Return1Y),
		Header:      Header,
		Rows:        make([]rowView, 0, len(result.Rows)),
	}

	for i := range result.Rows {
		row := &result.Rows[i]
		code := contracts.PadCode(row.Code)
		view.Rows = append(view.Rows, rowView{
			Code:     code,
			ChartURL: contracts.ChartURL(code),
			Name:     row.Name,
			Price:    FormatPrice(row.Price),
			Volume:   FormatVolume(row.Volume),
			Return1M: FormatPercent(row.Returns.Return1M),
			Return3M: FormatPercent(row.Returns.Return3M),
			Return1Y: FormatPercent(row.Returns.Return1Y),
			RSRating: row.RSRating,
			Strong:   row.IsStrong(),
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("render report: %w", err)
	}

	return title, buf.String(), nil
}

// SaveHTML writes the rendered report body
func SaveHTML(path, body string) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, strings.NewReader(body))
		return err
	})
}
