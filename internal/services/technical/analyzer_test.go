package technical

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/pkg/logger"
)

func TestAnalyzeEmptySeries(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), logger.Nop())
	_, err := a.Analyze(context.Background(), "BTC", nil)
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*float64(i%7) - float64(i%3)
	}
	bars := barsFromCloses(closes)

	a := NewAnalyzer(DefaultConfig(), logger.Nop())
	first, err := a.Analyze(context.Background(), "BTC", bars)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	second, err := a.Analyze(context.Background(), "BTC", bars)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	first.Timestamp = time.Time{}
	second.Timestamp = time.Time{}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("analysis not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzeRealizedVolFollowsBarSpacing(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 101
		}
	}
	minuteBars := barsFromCloses(closes)
	hourBars := barsFromCloses(closes)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range hourBars {
		hourBars[i].Bucket = t0.Add(time.Duration(i) * time.Hour)
	}

	a := NewAnalyzer(DefaultConfig(), logger.Nop())
	fromMinutes, err := a.Analyze(context.Background(), "BTC", minuteBars)
	if err != nil {
		t.Fatalf("minute bars: %v", err)
	}
	fromHours, err := a.Analyze(context.Background(), "BTC", hourBars)
	if err != nil {
		t.Fatalf("hour bars: %v", err)
	}

	if fromMinutes.RealizedVol <= 0 || fromHours.RealizedVol <= 0 {
		t.Fatalf("vols = %v / %v, want both > 0", fromMinutes.RealizedVol, fromHours.RealizedVol)
	}
	// same returns annualize with sqrt(60) fewer hourly bars per year
	ratio := fromMinutes.RealizedVol / fromHours.RealizedVol
	if ratio < 7.5 || ratio > 8.0 {
		t.Fatalf("minute/hour vol ratio = %v, want ~sqrt(60)", ratio)
	}
}

func TestAnalyzeDegradedShortSeries(t *testing.T) {
	a := NewAnalyzer(DefaultConfig(), logger.Nop())
	ta, err := a.Analyze(context.Background(), "BTC", barsFromCloses([]float64{100}))
	if err != nil {
		t.Fatalf("short series must degrade, not fail: %v", err)
	}
	if ta.RSI.Value != 50 {
		t.Fatalf("expected neutral RSI fallback, got %v", ta.RSI.Value)
	}
	if ta.Bollinger.Position != models.BollingerNeutral {
		t.Fatalf("expected neutral Bollinger position, got %s", ta.Bollinger.Position)
	}
	if ta.Signal.Action != models.ActionNeutral {
		t.Fatalf("expected neutral signal, got %s", ta.Signal.Action)
	}
}

func TestAnalyzeBundleComplete(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	bars := barsFromCloses(closes)

	a := NewAnalyzer(DefaultConfig(), logger.Nop())
	ta, err := a.Analyze(context.Background(), "ETH", bars)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if ta.Symbol != "ETH" {
		t.Fatalf("symbol not set")
	}
	if len(ta.RSI.Series) != len(bars) || len(ta.MACD.Histogram) != len(bars) {
		t.Fatalf("series lengths wrong")
	}
	if len(ta.MAs.EMA) != 4 || len(ta.MAs.SMA) != 3 {
		t.Fatalf("moving average sets incomplete: %d %d", len(ta.MAs.EMA), len(ta.MAs.SMA))
	}
	if ta.MAs.Trend != models.TrendStrongBullish {
		t.Fatalf("expected strong_bullish trend on a rising series, got %s", ta.MAs.Trend)
	}
	if len(ta.Levels.Fibonacci) != 7 {
		t.Fatalf("expected 7 fibonacci levels, got %d", len(ta.Levels.Fibonacci))
	}
}

func TestRenderReportMentionsSignal(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	a := NewAnalyzer(DefaultConfig(), logger.Nop())
	ta, err := a.Analyze(context.Background(), "BTC", barsFromCloses(closes))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	report := RenderReport(ta)
	if report == "" {
		t.Fatalf("empty report")
	}
	for _, want := range []string{"BTC", "RSI", "Signal:"} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}
