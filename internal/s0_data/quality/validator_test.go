package quality

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/pkg/logger"
)

func TestQualityGate_Check(t *testing.T) {
	gate := NewQualityGate(DefaultConfig(), logger.Nop())
	date := time.Date(2026, 10, 16, 0, 0, 0, 0, logger.KST)

	results := []contracts.FetchResult{
		{Code: "A", History: &contracts.PriceHistory{Code: "A", Closes: []float64{1}}},
		{Code: "B", History: &contracts.PriceHistory{Code: "B", Closes: []float64{1}}},
		{Code: "C", Err: fmt.Errorf("%w: 100 < 240 sessions", contracts.ErrInsufficientHistory)},
		{Code: "D", Err: errors.New("timeout")},
	}

	snapshot := gate.Check(date, results)

	assert.Equal(t, date, snapshot.Date)
	assert.Equal(t, 4, snapshot.TotalStocks)
	assert.Equal(t, 2, snapshot.ValidStocks)
	assert.Equal(t, 1, snapshot.Insufficient)
	assert.Equal(t, 1, snapshot.Failed)
	assert.InDelta(t, 0.5, snapshot.Coverage["history"], 1e-9)
	assert.InDelta(t, 0.75, snapshot.Coverage["fetched"], 1e-9)
	assert.InDelta(t, 0.5, snapshot.QualityScore, 1e-9)
	assert.True(t, snapshot.Passed)
}

func TestQualityGate_BelowThreshold(t *testing.T) {
	gate := NewQualityGate(Config{MinHistoryCoverage: 0.9}, logger.Nop())

	snapshot := gate.Check(time.Now(), []contracts.FetchResult{
		{Code: "A", History: &contracts.PriceHistory{Closes: []float64{1}}},
		{Code: "B", Err: errors.New("404")},
	})

	assert.True(t, snapshot.IsValid())
	assert.False(t, snapshot.Passed)
}

func TestQualityGate_Empty(t *testing.T) {
	gate := NewQualityGate(DefaultConfig(), logger.Nop())

	snapshot := gate.Check(time.Now(), nil)

	assert.Equal(t, 0, snapshot.TotalStocks)
	assert.Equal(t, 0.0, snapshot.QualityScore)
	assert.False(t, snapshot.IsValid())
	assert.False(t, snapshot.Passed)
}
