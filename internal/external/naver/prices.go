package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/etf-rs/internal/contracts"
)

var priceRowPattern = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+)`)

// FetchPrices fetches daily price data for an instrument from the Naver chart API
// ⭐ SSOT: Naver Finance 가격 API 호출은 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, stockCode string, from, to time.Time) ([]PriceData, error) {
	params := url.Values{}
	params.Set("symbol", contracts.PadCode(stockCode))
	params.Set("requestType", "1")
	params.Set("startTime", from.Format("20060102"))
	params.Set("endTime", to.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.fetchBody(ctx, c.chartURL+"/siseJson.naver?"+params.Encode())
	if err != nil {
		return nil, err
	}

	prices, err := c.parsePriceResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	for i := range prices {
		prices[i].StockCode = stockCode
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      len(prices),
	}).Debug("Fetched prices")
	return prices, nil
}

// FetchHistory returns the chronological close series for an instrument
func (c *Client) FetchHistory(ctx context.Context, code string, from, to time.Time) (*contracts.PriceHistory, error) {
	prices, err := c.FetchPrices(ctx, code, from, to)
	if err != nil {
		return nil, err
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("no price data for %s", code)
	}

	return toHistory(code, prices), nil
}

// toHistory converts price rows to a close series
func toHistory(code string, prices []PriceData) *contracts.PriceHistory {
	history := &contracts.PriceHistory{
		Code:   code,
		Closes: make([]float64, 0, len(prices)),
	}
	for _, p := range prices {
		history.Closes = append(history.Closes, float64(p.ClosePrice))
	}
	return history
}

// parsePriceResponse parses the siseJson body, oldest first
func (c *Client) parsePriceResponse(body string) ([]PriceData, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var prices []PriceData
	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		prices = c.parsePriceJSON(rawData)
	} else {
		prices = c.parsePriceRegex(body)
	}

	if body != "" && len(prices) == 0 && !strings.HasPrefix(body, "[") {
		return nil, fmt.Errorf("unrecognized price payload")
	}

	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].TradeDate.Before(prices[j].TradeDate)
	})
	return prices, nil
}

// parsePriceJSON parses JSON array format
func (c *Client) parsePriceJSON(rawData [][]interface{}) []PriceData {
	var prices []PriceData
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}

		tradeDate, err := time.Parse("20060102", strings.TrimSpace(dateStr))
		if err != nil {
			continue
		}

		closePrice := toInt64(row[4])
		volume := toInt64(row[5])

		prices = append(prices, PriceData{
			TradeDate:    tradeDate,
			OpenPrice:    toInt64(row[1]),
			HighPrice:    toInt64(row[2]),
			LowPrice:     toInt64(row[3]),
			ClosePrice:   closePrice,
			Volume:       volume,
			TradingValue: closePrice * volume,
		})
	}
	return prices
}

// parsePriceRegex parses using regex (fallback)
func (c *Client) parsePriceRegex(body string) []PriceData {
	matches := priceRowPattern.FindAllStringSubmatch(body, -1)

	var prices []PriceData
	for _, match := range matches {
		tradeDate, err := time.Parse("20060102", match[1])
		if err != nil {
			continue
		}

		closePrice := toInt64(match[5])
		volume := toInt64(match[6])

		prices = append(prices, PriceData{
			TradeDate:    tradeDate,
			OpenPrice:    toInt64(match[2]),
			HighPrice:    toInt64(match[3]),
			LowPrice:     toInt64(match[4]),
			ClosePrice:   closePrice,
			Volume:       volume,
			TradingValue: closePrice * volume,
		})
	}
	return prices
}

// toInt64 converts various types to int64
func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case string:
		val = strings.TrimSpace(val)
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
		f, _ := strconv.ParseFloat(val, 64)
		return int64(f)
	default:
		return 0
	}
}
