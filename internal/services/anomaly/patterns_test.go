package anomaly

import (
	"context"
	"testing"

	"CoinSentry/internal/domain/models"
)

func pumpAndDumpSeries() []float64 {
	prices := make([]float64, 80)
	for i := 0; i < 50; i++ {
		prices[i] = 100
	}
	// Rise into a late peak, then a sharp give-back.
	for i := 50; i <= 69; i++ {
		prices[i] = 100 + float64(i-49)*2 // peaks at 140
	}
	for i := 70; i < 80; i++ {
		prices[i] = 140 - float64(i-69)*3 // ends at 110
	}
	return prices
}

func flashCrashSeries() []float64 {
	prices := make([]float64, 80)
	for i := 0; i < 70; i++ {
		prices[i] = 100
	}
	for i := 70; i < 80; i++ {
		prices[i] = 100 - float64(i-69)*2.5 // troughs at 75
	}
	return prices
}

func fomoRallySeries() []float64 {
	prices := make([]float64, 100)
	for i := 0; i < 70; i++ {
		prices[i] = 100
	}
	for i := 70; i < 100; i++ {
		prices[i] = 100 + float64(i-69)*0.1 // gentle but persistent climb
	}
	return prices
}

func TestPumpAndDump(t *testing.T) {
	d := newTestDetector()
	if got := d.identifyPattern(pumpAndDumpSeries()); got != models.PatternPumpAndDump {
		t.Fatalf("expected pump_and_dump, got %q", got)
	}
}

func TestFlashCrash(t *testing.T) {
	d := newTestDetector()
	if got := d.identifyPattern(flashCrashSeries()); got != models.PatternFlashCrash {
		t.Fatalf("expected flash_crash, got %q", got)
	}
}

func TestFomoRally(t *testing.T) {
	d := newTestDetector()
	if got := d.identifyPattern(fomoRallySeries()); got != models.PatternFomoRally {
		t.Fatalf("expected fomo_rally, got %q", got)
	}
}

func TestPatternPrecedence(t *testing.T) {
	// A strong run-up with >20 pairwise increases in the last 30 samples
	// followed by a dump matches both fomo_rally and pump_and_dump; the
	// pump check runs first and wins.
	prices := make([]float64, 80)
	for i := 0; i < 50; i++ {
		prices[i] = 100
	}
	for i := 50; i <= 71; i++ {
		prices[i] = 100 + float64(i-49)*(40.0/22.0) // 22 straight increases to 140
	}
	for i := 72; i < 80; i++ {
		prices[i] = 140 - float64(i-71)*3.75 // ends at 110
	}

	d := newTestDetector()
	if got := d.identifyPattern(prices); got != models.PatternPumpAndDump {
		t.Fatalf("expected pump_and_dump to take precedence, got %q", got)
	}
}

func TestPatternNeedsMinimumHistory(t *testing.T) {
	d := newTestDetector()
	if got := d.identifyPattern(flatSeries(59, 100)); got != "" {
		t.Fatalf("expected no pattern for short history, got %q", got)
	}
}

func TestQuietMarketNoPattern(t *testing.T) {
	d := newTestDetector()
	if got := d.identifyPattern(flatSeries(240, 100)); got != "" {
		t.Fatalf("expected no pattern on flat prices, got %q", got)
	}
}

func TestRiskLevels(t *testing.T) {
	d := newTestDetector()
	cases := []struct {
		score float64
		want  string
	}{
		{0.0, models.RiskLow},
		{0.39, models.RiskLow},
		{0.4, models.RiskMedium},
		{0.40001, models.RiskMedium},
		{0.7, models.RiskMedium}, // high requires strictly greater
		{0.71, models.RiskHigh},
	}
	for _, c := range cases {
		if got := d.riskLevel(c.score); got != c.want {
			t.Fatalf("riskLevel(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestRiskScoreRangeAndFactors(t *testing.T) {
	d := newTestDetector()
	feedPrices(d, "BTC", pumpAndDumpSeries())

	risk, err := d.AssessRisk(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if risk.Score < 0 || risk.Score > 1 {
		t.Fatalf("score out of range: %v", risk.Score)
	}
	if risk.Factors.PatternRisk != 0.8 {
		t.Fatalf("expected pattern risk 0.8 for pump_and_dump, got %v", risk.Factors.PatternRisk)
	}
	for _, f := range []float64{risk.Factors.PriceVolatility, risk.Factors.VolumeIrregularity, risk.Factors.PatternRisk} {
		if f < 0 || f > 1 {
			t.Fatalf("factor out of range: %+v", risk.Factors)
		}
	}
}

func TestRiskEmptyHistoryIsLow(t *testing.T) {
	d := newTestDetector()
	risk, err := d.AssessRisk(context.Background(), "UNKNOWN")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if risk.Score != 0 || risk.Level != models.RiskLow {
		t.Fatalf("expected zero low risk on empty history, got %+v", risk)
	}
}
