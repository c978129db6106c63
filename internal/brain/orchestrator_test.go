package brain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/internal/report"
	"github.com/wonny/etf-rs/internal/s0_data/collector"
	"github.com/wonny/etf-rs/internal/s0_data/quality"
	"github.com/wonny/etf-rs/internal/s1_universe"
	"github.com/wonny/etf-rs/internal/s2_signals"
	"github.com/wonny/etf-rs/internal/selection"
	"github.com/wonny/etf-rs/pkg/config"
	"github.com/wonny/etf-rs/pkg/logger"
)

type fakeListing struct {
	items []contracts.ListingItem
	err   error
}

func (f *fakeListing) FetchETFList(ctx context.Context) ([]contracts.ListingItem, error) {
	return f.items, f.err
}

type fakeHistory struct {
	closes map[string][]float64
	errs   map[string]error
}

func (f *fakeHistory) FetchHistory(ctx context.Context, code string, from, to time.Time) (*contracts.PriceHistory, error) {
	if err, ok := f.errs[code]; ok {
		return nil, err
	}
	closes, ok := f.closes[code]
	if !ok {
		return nil, errors.New("no data")
	}
	return &contracts.PriceHistory{Code: code, Closes: closes}, nil
}

type fakePublisher struct {
	err    error
	calls  int
	titles []string
}

func (f *fakePublisher) Publish(ctx context.Context, title, htmlBody string) error {
	f.calls++
	f.titles = append(f.titles, title)
	return f.err
}

// series returns 240 closes at 100 with the latest close at last
func series(last float64) []float64 {
	closes := make([]float64, 240)
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = last
	return closes
}

type fixture struct {
	listing   *fakeListing
	history   *fakeHistory
	publisher *fakePublisher
	output    config.OutputConfig
}

func newFixture(t *testing.T) *fixture {
	dir := t.TempDir()
	return &fixture{
		listing: &fakeListing{items: []contracts.ListingItem{
			{Code: "111111", Name: "ETF A", TabCode: 1, Price: 12345, Volume: 1000},
			{Code: "222222", Name: "ETF B", TabCode: 2, Price: 5000, Volume: 20},
			{Code: "333333", Name: "ETF C", TabCode: 4, Price: 7000, Volume: 30},
			{Code: "444444", Name: "KODEX 레버리지", TabCode: 1, Price: 9000, Volume: 40},
			{Code: "555555", Name: "국고채 3년", TabCode: 3, Price: 100000, Volume: 50},
		}},
		history: &fakeHistory{
			closes: map[string][]float64{
				"069500": series(112),
				"111111": series(110), // weighted 0.10
				"222222": series(105), // weighted 0.05
				"333333": series(130)[:100],
				"444444": series(200),
			},
		},
		publisher: &fakePublisher{},
		output: config.OutputConfig{
			CSVPath:  filepath.Join(dir, "etf_data.csv"),
			HTMLPath: filepath.Join(dir, "report.html"),
		},
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	log := logger.Nop()
	momentum := s2_signals.NewMomentumCalculator(log)
	coll := collector.NewCollector(f.history, collector.Config{BatchSize: 50, Workers: 2}, log)

	return NewOrchestrator(
		s1_universe.NewSelector(f.listing, s1_universe.DefaultConfig(), log),
		coll,
		quality.NewQualityGate(quality.DefaultConfig(), log),
		momentum,
		s2_signals.NewBuilder(momentum, log),
		selection.NewRanker(log),
		f.publisher,
		"069500",
		f.output,
		log,
	)
}

func runDate() time.Time {
	return time.Date(2026, 10, 16, 16, 30, 0, 0, logger.KST)
}

func TestOrchestrator_Run(t *testing.T) {
	f := newFixture(t)

	result, err := f.orchestrator().Run(context.Background(), RunConfig{Date: runDate()})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "run_20261016_163000", result.RunID)
	assert.Equal(t, []string{StageUniverse, StageBenchmark, StageHistory, StageSignals, StageRanking, StageExport, StagePublish}, result.CompletedStages)

	require.NotNil(t, result.Universe)
	assert.Equal(t, 3, result.Universe.Count())

	require.NotNil(t, result.Ranked)
	require.Equal(t, 2, result.Ranked.Count())
	assert.Equal(t, "111111", result.Ranked.Rows[0].Code)
	assert.Equal(t, 99, result.Ranked.Rows[0].RSRating)
	assert.Equal(t, "222222", result.Ranked.Rows[1].Code)
	assert.Contains(t, result.Ranked.Skipped, "333333")

	assert.True(t, result.Benchmark.Available)
	assert.InDelta(t, 0.12, result.Benchmark.Returns.Return1Y, 1e-12)

	require.NotNil(t, result.QualitySnapshot)
	assert.Equal(t, 3, result.QualitySnapshot.TotalStocks)
	assert.Equal(t, 2, result.QualitySnapshot.ValidStocks)
	assert.Equal(t, 1, result.QualitySnapshot.Insufficient)

	assert.Equal(t, "주식형 ETF 상대강도 모멘텀 랭킹(2026-10-16)", result.Title)
	assert.True(t, result.Published)
	assert.Equal(t, 1, f.publisher.calls)
	assert.Equal(t, []string{result.Title}, f.publisher.titles)

	rows, err := report.LoadCSV(f.output.CSVPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, result.Ranked.Rows[0].Returns, rows[0].Returns)

	html, err := os.ReadFile(f.output.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "1년(12.00%)")
}

func TestOrchestrator_Run_UniverseFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.listing.err = errors.New("connection refused")

	result, err := f.orchestrator().Run(context.Background(), RunConfig{Date: runDate()})
	require.Error(t, err)

	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
	assert.True(t, strings.HasPrefix(err.Error(), StageUniverse))
	assert.False(t, result.Success)
	assert.Empty(t, result.CompletedStages)
	assert.Equal(t, 0, f.publisher.calls)

	_, statErr := os.Stat(f.output.CSVPath)
	assert.True(t, os.IsNotExist(statErr), "no dataset on aborted run")
}

func TestOrchestrator_Run_BenchmarkSoftFail(t *testing.T) {
	for name, mutate := range map[string]func(h *fakeHistory){
		"fetch error":   func(h *fakeHistory) { h.errs = map[string]error{"069500": errors.New("timeout")} },
		"short history": func(h *fakeHistory) { h.closes["069500"] = series(112)[:50] },
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			mutate(f.history)

			result, err := f.orchestrator().Run(context.Background(), RunConfig{Date: runDate()})
			require.NoError(t, err)

			assert.False(t, result.Benchmark.Available)
			assert.Equal(t, contracts.PeriodReturns{}, result.Benchmark.Returns)
			assert.Equal(t, 2, result.Ranked.Count())
		})
	}
}

func TestOrchestrator_Run_PublishFailureSwallowed(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("publish failed: 403")

	result, err := f.orchestrator().Run(context.Background(), RunConfig{Date: runDate()})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.Published)
	assert.Error(t, result.PublishError)

	_, statErr := os.Stat(f.output.CSVPath)
	assert.NoError(t, statErr)
}

func TestOrchestrator_Run_DryRun(t *testing.T) {
	f := newFixture(t)

	result, err := f.orchestrator().Run(context.Background(), RunConfig{Date: runDate(), DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 0, f.publisher.calls)
	assert.NotContains(t, result.CompletedStages, StagePublish)
	assert.Contains(t, result.CompletedStages, StageExport)
}

func TestOrchestrator_Run_AllInstrumentsFail(t *testing.T) {
	f := newFixture(t)
	f.history.closes = map[string][]float64{}

	result, err := f.orchestrator().Run(context.Background(), RunConfig{Date: runDate()})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Ranked.Count())
	rows, err := report.LoadCSV(f.output.CSVPath)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.orchestrator().Run(ctx, RunConfig{Date: runDate()})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, result.Success)
}

func TestNewRunID(t *testing.T) {
	assert.Equal(t, "run_20261017_010000", NewRunID(time.Date(2026, 10, 16, 16, 0, 0, 0, time.UTC)))
}
