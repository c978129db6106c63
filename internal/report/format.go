package report

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatPercent renders a return fraction as a percent string (0.0532 → "5.32%")
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatPrice renders a KRW price with thousands separators
func FormatPrice(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// FormatVolume renders a share volume with thousands separators
func FormatVolume(v int64) string {
	return humanize.Comma(v)
}
