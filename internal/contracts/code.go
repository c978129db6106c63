package contracts

import "strings"

// CodeWidth is the fixed width of KRX instrument codes
const CodeWidth = 6

// PadCode left-pads a numeric code with zeros to six digits ("5930" → "005930")
func PadCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) >= CodeWidth {
		return code
	}
	return strings.Repeat("0", CodeWidth-len(code)) + code
}

// ChartURL returns the Naver Finance chart link for a code
func ChartURL(code string) string {
	return "https://finance.naver.com/item/fchart.naver?code=" + PadCode(code)
}
