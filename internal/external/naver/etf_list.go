package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wonny/etf-rs/internal/contracts"
)

// etfListResponse is the etfItemList.nhn payload
type etfListResponse struct {
	ResultCode string `json:"resultCode"`
	Result     struct {
		ETFItemList []etfItem `json:"etfItemList"`
	} `json:"result"`
}

type etfItem struct {
	ItemCode   string      `json:"itemcode"`
	ItemName   string      `json:"itemname"`
	ETFTabCode int         `json:"etfTabCode"`
	NowVal     json.Number `json:"nowVal"`
	Quant      json.Number `json:"quant"`
}

// FetchETFList fetches every listed ETF with tab code, price and volume
// ⭐ SSOT: ETF 목록 API 호출은 이 함수에서만
func (c *Client) FetchETFList(ctx context.Context) ([]contracts.ListingItem, error) {
	body, err := c.fetchBody(ctx, c.baseURL+"/api/sise/etfItemList.nhn")
	if err != nil {
		return nil, err
	}

	items, err := parseETFList(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithField("count", len(items)).Debug("Fetched ETF list")
	return items, nil
}

// parseETFList decodes the listing payload
func parseETFList(body []byte) ([]contracts.ListingItem, error) {
	var resp etfListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode ETF list: %w", err)
	}

	if resp.ResultCode != "" && resp.ResultCode != "success" {
		return nil, fmt.Errorf("ETF list result code: %s", resp.ResultCode)
	}

	if len(resp.Result.ETFItemList) == 0 {
		return nil, fmt.Errorf("ETF list is empty")
	}

	items := make([]contracts.ListingItem, 0, len(resp.Result.ETFItemList))
	for _, it := range resp.Result.ETFItemList {
		code := strings.TrimSpace(it.ItemCode)
		if code == "" {
			continue
		}

		price, _ := it.NowVal.Float64()
		volume, _ := it.Quant.Float64()

		items = append(items, contracts.ListingItem{
			Code:    contracts.PadCode(code),
			Name:    strings.TrimSpace(it.ItemName),
			TabCode: it.ETFTabCode,
			Price:   price,
			Volume:  int64(volume),
		})
	}

	return items, nil
}
