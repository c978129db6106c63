package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/etf-rs/internal/contracts"
	"github.com/wonny/etf-rs/pkg/logger"
)

type fakeSource struct {
	mu       sync.Mutex
	sessions map[string]int
	errs     map[string]error
	calls    []string
}

func (f *fakeSource) FetchHistory(ctx context.Context, code string, from, to time.Time) (*contracts.PriceHistory, error) {
	f.mu.Lock()
	f.calls = append(f.calls, code)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errs[code]; ok {
		return nil, err
	}

	n, ok := f.sessions[code]
	if !ok {
		n = 250
	}
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return &contracts.PriceHistory{Code: code, Closes: closes}, nil
}

func newTestCollector(source contracts.HistorySource, cfg Config) (*Collector, *[]time.Duration) {
	c := NewCollector(source, cfg, logger.Nop())
	var pauses []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return ctx.Err()
	}
	return c, &pauses
}

func codesN(n int) []string {
	codes := make([]string, n)
	for i := range codes {
		codes[i] = fmt.Sprintf("%06d", i+1)
	}
	return codes
}

func TestNewCollector_Defaults(t *testing.T) {
	c := NewCollector(&fakeSource{}, Config{}, logger.Nop())
	assert.Equal(t, 50, c.config.BatchSize)
	assert.Equal(t, 1, c.config.Workers)
}

func TestFetchAll_HistoryThreshold(t *testing.T) {
	source := &fakeSource{sessions: map[string]int{"A": 240, "B": 239, "C": 400}}
	c, _ := newTestCollector(source, DefaultConfig())

	results, err := c.FetchAll(context.Background(), []string{"A", "B", "C"}, time.Now().AddDate(-1, 0, 0), time.Now())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK(), "exactly 240 closes is enough")
	assert.ErrorIs(t, results[1].Err, contracts.ErrInsufficientHistory)
	assert.True(t, results[2].OK())
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, 10, 16, 16, 30, 0, 0, time.UTC)
	from, to := Window(now)
	assert.Equal(t, time.Date(2025, 10, 16, 16, 30, 0, 0, time.UTC), from)
	assert.Equal(t, now, to)
}

func TestFetchAll_FailureIsolation(t *testing.T) {
	source := &fakeSource{
		sessions: map[string]int{"C": 100},
		errs:     map[string]error{"B": errors.New("connection reset")},
	}
	c, _ := newTestCollector(source, DefaultConfig())

	results, err := c.FetchAll(context.Background(), []string{"A", "B", "C", "D"}, time.Now().AddDate(-1, 0, 0), time.Now())
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, []string{"A", "B", "C", "D"}, []string{results[0].Code, results[1].Code, results[2].Code, results[3].Code})

	assert.True(t, results[0].OK())
	assert.EqualError(t, results[1].Err, "connection reset")
	assert.False(t, IsSkip(results[1].Err))
	assert.ErrorIs(t, results[2].Err, contracts.ErrInsufficientHistory)
	assert.True(t, IsSkip(results[2].Err))
	assert.Nil(t, results[2].History)
	assert.True(t, results[3].OK())
}

func TestFetchAll_PausesEveryBatch(t *testing.T) {
	source := &fakeSource{}
	c, pauses := newTestCollector(source, Config{BatchSize: 50, BatchPause: 500 * time.Millisecond, Workers: 1})

	results, err := c.FetchAll(context.Background(), codesN(120), time.Now(), time.Now())
	require.NoError(t, err)

	assert.Len(t, results, 120)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, *pauses)
	assert.Equal(t, codesN(120), source.calls, "sequential fetch keeps input order")
}

func TestFetchAll_NoPauseBelowBatchSize(t *testing.T) {
	c, pauses := newTestCollector(&fakeSource{}, DefaultConfig())

	_, err := c.FetchAll(context.Background(), codesN(50), time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, *pauses)
}

func TestFetchAll_ConcurrentKeepsOrder(t *testing.T) {
	source := &fakeSource{
		sessions: map[string]int{"000007": 10},
		errs:     map[string]error{"000003": errors.New("timeout")},
	}
	c, _ := newTestCollector(source, Config{BatchSize: 5, Workers: 4})

	codes := codesN(20)
	results, err := c.FetchAll(context.Background(), codes, time.Now(), time.Now())
	require.NoError(t, err)
	require.Len(t, results, 20)

	for i, r := range results {
		assert.Equal(t, codes[i], r.Code)
		switch r.Code {
		case "000003":
			assert.Error(t, r.Err)
		case "000007":
			assert.ErrorIs(t, r.Err, contracts.ErrInsufficientHistory)
		default:
			assert.True(t, r.OK(), "code %s", r.Code)
		}
	}
	assert.Len(t, source.calls, 20)
}

func TestFetchAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestCollector(&fakeSource{}, Config{BatchSize: 2, Workers: 1})

	results, err := c.FetchAll(ctx, codesN(5), time.Now(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.False(t, r.OK())
	}
}

func TestFetchAll_Empty(t *testing.T) {
	c, _ := newTestCollector(&fakeSource{}, DefaultConfig())

	results, err := c.FetchAll(context.Background(), nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFetchBenchmark(t *testing.T) {
	source := &fakeSource{
		sessions: map[string]int{"SHORT": 239},
		errs:     map[string]error{"DOWN": errors.New("503")},
	}
	c, _ := newTestCollector(source, DefaultConfig())

	ok := c.FetchBenchmark(context.Background(), "069500", time.Now(), time.Now())
	assert.True(t, ok.OK())
	assert.Equal(t, 250, ok.History.Len())

	short := c.FetchBenchmark(context.Background(), "SHORT", time.Now(), time.Now())
	assert.ErrorIs(t, short.Err, contracts.ErrInsufficientHistory)

	down := c.FetchBenchmark(context.Background(), "DOWN", time.Now(), time.Now())
	assert.Error(t, down.Err)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
