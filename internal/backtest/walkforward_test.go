package backtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjkim/vega/internal/contracts"
	"github.com/sjkim/vega/internal/scoring"
)

func TestGenerateWindows_OneYear(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	windows := GenerateWindows(start, end, 180, 90, 90)

	// 180d train + 1d gap + 90d test fits twice in a year at a 90d step.
	require.Len(t, windows, 2)

	first := windows[0]
	assert.Equal(t, start, first.TrainStart)
	assert.Equal(t, start.AddDate(0, 0, 180), first.TrainEnd)
	assert.Equal(t, first.TrainEnd.AddDate(0, 0, 1), first.TestStart)
	assert.Equal(t, first.TestStart.AddDate(0, 0, 90), first.TestEnd)

	second := windows[1]
	assert.Equal(t, start.AddDate(0, 0, 90), second.TrainStart)
	assert.False(t, second.TestEnd.After(end))
}

func TestGenerateWindows_NoLeakage(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, w := range GenerateWindows(start, end, 180, 90, 30) {
		assert.True(t, w.TestStart.After(w.TrainEnd),
			"test slice must start strictly after the training slice ends")
		assert.True(t, w.TrainEnd.After(w.TrainStart))
		assert.True(t, w.TestEnd.After(w.TestStart))
	}
}

func TestGenerateWindows_RangeTooShort(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, GenerateWindows(start, start.AddDate(0, 0, 100), 180, 90, 90))
	assert.Empty(t, GenerateWindows(start, start, 180, 90, 90))
}

func TestGenerateWindows_InvalidParams(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(2, 0, 0)

	assert.Nil(t, GenerateWindows(start, end, 0, 90, 90))
	assert.Nil(t, GenerateWindows(start, end, 180, -1, 90))
	assert.Nil(t, GenerateWindows(start, end, 180, 90, 0))
}

func TestRunWalkForward(t *testing.T) {
	// Weekly winning events across two years, enough for every train and
	// test slice to clear the minimum trade count.
	store := &fakeEventStore{moves: map[string][]contracts.EarningsMove{}}
	for i := 0; i < 104; i++ {
		ticker := fmt.Sprintf("T%03d", i)
		date := day(i * 7)
		store.events = append(store.events, event(ticker, date, 2, 10))
		store.moves[ticker] = steadyHistory(date, 8, 5)
	}
	e := newTestEngine(store)

	configs := []scoring.Config{scoring.DefaultConfig()}
	opts := WalkForwardOptions{
		StartDate:       day(0),
		EndDate:         day(365),
		TrainWindowDays: 180,
		TestWindowDays:  90,
		StepDays:        90,
	}

	result, err := e.RunWalkForward(context.Background(), configs, opts)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalWindows)
	require.Len(t, result.Windows, 2)
	assert.Zero(t, result.SkippedWindows)
	assert.Equal(t, 2, result.ConfigWins["balanced"])

	for _, w := range result.Windows {
		assert.Equal(t, "balanced", w.WinnerConfig)
		assert.True(t, w.Window.TestStart.After(w.Window.TrainEnd))
		assert.Greater(t, w.Test.SelectedTrades, 0)
	}
	assert.Greater(t, result.AvgTestWinRate, 0.99, "every synthetic trade wins")
}

func TestRunWalkForward_ThinWindowsSkipped(t *testing.T) {
	// Only three events in two years: every train slice is too thin.
	store := &fakeEventStore{moves: map[string][]contracts.EarningsMove{}}
	for i, ticker := range []string{"A", "B", "C"} {
		date := day(i * 200)
		store.events = append(store.events, event(ticker, date, 2, 10))
		store.moves[ticker] = steadyHistory(date, 8, 5)
	}
	e := newTestEngine(store)

	result, err := e.RunWalkForward(context.Background(), []scoring.Config{scoring.DefaultConfig()}, WalkForwardOptions{
		StartDate:       day(0),
		EndDate:         day(730),
		TrainWindowDays: 180,
		TestWindowDays:  90,
		StepDays:        90,
	})
	require.NoError(t, err)

	assert.Equal(t, result.TotalWindows, result.SkippedWindows)
	assert.Empty(t, result.Windows)
	assert.Zero(t, result.AvgTestSharpe)
}

func TestGenerateWindows_StepAdvances(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	windows := GenerateWindows(start, end, 180, 90, 30)
	require.Greater(t, len(windows), 2)

	for i := 1; i < len(windows); i++ {
		gap := windows[i].TrainStart.Sub(windows[i-1].TrainStart)
		assert.Equal(t, 30*24*time.Hour, gap)
	}
}
