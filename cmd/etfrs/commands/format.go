package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/etf-rs/internal/brain"
	"github.com/wonny/etf-rs/internal/report"
	"github.com/wonny/etf-rs/pkg/config"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintRunHeader prints a formatted batch header
func PrintRunHeader(runID string, now time.Time, cfg *config.Config) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Println("  ETF RS Ranking")
	PrintSeparator()
	fmt.Printf("  Run ID    : %s\n", runID)
	fmt.Printf("  Date      : %s (KST)\n", now.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Benchmark : %s\n", cfg.Pipeline.BenchmarkCode)
	fmt.Printf("  Workers   : %d\n", cfg.Pipeline.Workers)
	if dryRun {
		fmt.Println("  Mode      : dry-run (포스팅 생략)")
	}
	PrintSeparator()
}

// PrintRunSummary prints the run result and the top rows of the ranking
func PrintRunSummary(result *brain.RunResult, top int, publishing bool) {
	fmt.Println()
	PrintDoubleSeparator()

	if result.Universe != nil {
		PrintKeyValue("Universe", fmt.Sprintf("%d (excluded %d)", result.Universe.Count(), len(result.Universe.Excluded)), 10)
	}
	if q := result.QualitySnapshot; q != nil {
		PrintKeyValue("Fetched", fmt.Sprintf("%d/%d (insufficient %d, failed %d)", q.ValidStocks, q.TotalStocks, q.Insufficient, q.Failed), 10)
	}
	if result.Benchmark.Available {
		b := result.Benchmark.Returns
		PrintKeyValue("Benchmark", fmt.Sprintf("%s  1M %s  3M %s  1Y %s", result.Benchmark.Code,
			report.FormatPercent(b.Return1M), report.FormatPercent(b.Return3M), report.FormatPercent(b.Return1Y)), 10)
	} else {
		PrintKeyValue("Benchmark", "N/A", 10)
	}
	if result.Ranked != nil {
		PrintKeyValue("Ranked", strconv.Itoa(result.Ranked.Count()), 10)
	}
	PrintKeyValue("CSV", result.CSVPath, 10)
	PrintKeyValue("HTML", result.HTMLPath, 10)

	switch {
	case !publishing || dryRun:
		PrintKeyValue("Blogger", "skipped", 10)
	case result.Published:
		PrintKeyValue("Blogger", "posted", 10)
	case result.PublishError != nil:
		PrintKeyValue("Blogger", "failed: "+result.PublishError.Error(), 10)
	}

	if result.Ranked != nil && result.Ranked.Count() > 0 {
		fmt.Println()
		PrintTopRows(result, top)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("%s completed in %.2fs", result.RunID, result.Duration.Seconds()))
}

// PrintTopRows prints the first n rows of the ranking table
func PrintTopRows(result *brain.RunResult, n int) {
	rows := result.Ranked.Rows
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}

	columns := []string{"코드", "RS", "1개월", "3개월", "1년", "종목명"}
	widths := []int{8, 4, 9, 9, 9, 30}
	PrintTableHeader(columns, widths)

	for _, row := range rows {
		PrintTableRow([]string{
			row.Code,
			strconv.Itoa(row.RSRating),
			report.FormatPercent(row.Returns.Return1M),
			report.FormatPercent(row.Returns.Return3M),
			report.FormatPercent(row.Returns.Return1Y),
			row.Name,
		}, widths)
	}
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}
