package anomaly

import (
	"context"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/history"
	"CoinSentry/pkg/logger"
)

func newTestDetector() *Detector {
	return NewDetector(DefaultConfig(), history.NewStore(1440), logger.Nop())
}

func feedPrices(d *Detector, symbol string, prices []float64) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		d.History().Append(models.Sample{
			Symbol:    symbol,
			Price:     p,
			Volume:    1000,
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
		})
	}
}

func feedVolumes(d *Detector, symbol string, volumes []float64) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range volumes {
		d.History().Append(models.Sample{
			Symbol:    symbol,
			Price:     100,
			Volume:    v,
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
		})
	}
}

func flatSeries(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func findAnomaly(anomalies []models.Anomaly, kind string) *models.Anomaly {
	for i := range anomalies {
		if anomalies[i].Type == kind {
			return &anomalies[i]
		}
	}
	return nil
}

func TestPriceAnomalyBoundaryInclusive(t *testing.T) {
	d := newTestDetector()
	prices := flatSeries(60, 100)
	prices[len(prices)-1] = 115 // exactly +15% vs the sample 60 steps back
	feedPrices(d, "BTC", prices)

	got, err := d.Scan(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	a := findAnomaly(got, models.AnomalyPrice)
	if a == nil {
		t.Fatalf("expected price anomaly at exactly 0.15 change")
	}
	if a.Severity != models.SeverityMedium {
		t.Fatalf("expected medium severity for 0.15, got %s", a.Severity)
	}
}

func TestPriceAnomalyBelowBoundary(t *testing.T) {
	d := newTestDetector()
	prices := flatSeries(60, 100)
	prices[len(prices)-1] = 114.9999
	feedPrices(d, "BTC", prices)

	got, _ := d.Scan(context.Background(), "BTC")
	if a := findAnomaly(got, models.AnomalyPrice); a != nil {
		t.Fatalf("expected no anomaly below threshold, got %+v", a)
	}
}

func TestPriceSpikeAtHourBoundaryIsMedium(t *testing.T) {
	d := newTestDetector()
	prices := flatSeries(70, 100)
	prices[10] = 100             // reference sample, 60 steps back from the last
	prices[len(prices)-1] = 120  // +20% vs reference
	feedPrices(d, "BTC", prices) // 70 one-minute samples

	got, _ := d.Scan(context.Background(), "BTC")
	a := findAnomaly(got, models.AnomalyPrice)
	if a == nil {
		t.Fatalf("expected price anomaly")
	}
	if a.Severity != models.SeverityMedium {
		t.Fatalf("0.20 < 0.30 must be medium, got %s", a.Severity)
	}
	if a.Direction != "bullish" {
		t.Fatalf("expected bullish direction, got %s", a.Direction)
	}
}

func TestPriceSevereAboveThirtyPercent(t *testing.T) {
	d := newTestDetector()
	prices := flatSeries(60, 100)
	prices[len(prices)-1] = 140
	feedPrices(d, "BTC", prices)

	got, _ := d.Scan(context.Background(), "BTC")
	a := findAnomaly(got, models.AnomalyPrice)
	if a == nil || a.Severity != models.SeverityHigh {
		t.Fatalf("expected high severity, got %+v", a)
	}
}

func TestPriceInsufficientHistory(t *testing.T) {
	d := newTestDetector()
	feedPrices(d, "BTC", flatSeries(59, 100))

	got, err := d.Scan(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("insufficient history must not fail: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no anomalies, got %v", got)
	}
}

func TestVolumeAnomalySeverities(t *testing.T) {
	d := newTestDetector()
	volumes := flatSeries(60, 100)
	volumes[len(volumes)-1] = 1000 // ratio ~8.7
	feedVolumes(d, "BTC", volumes)

	got, _ := d.Scan(context.Background(), "BTC")
	a := findAnomaly(got, models.AnomalyVolume)
	if a == nil || a.Severity != models.SeverityHigh {
		t.Fatalf("expected high volume anomaly, got %+v", a)
	}

	d2 := newTestDetector()
	volumes = flatSeries(60, 100)
	volumes[len(volumes)-1] = 400 // ratio ~3.8, still a >3 sigma outlier
	feedVolumes(d2, "ETH", volumes)

	got, _ = d2.Scan(context.Background(), "ETH")
	a = findAnomaly(got, models.AnomalyVolume)
	if a == nil || a.Severity != models.SeverityMedium {
		t.Fatalf("expected medium volume anomaly, got %+v", a)
	}
}

func TestVolumeNormalNotFlagged(t *testing.T) {
	d := newTestDetector()
	volumes := flatSeries(60, 100)
	volumes[len(volumes)-1] = 200 // ratio ~2, below the 3x bar
	feedVolumes(d, "BTC", volumes)

	got, _ := d.Scan(context.Background(), "BTC")
	if a := findAnomaly(got, models.AnomalyVolume); a != nil {
		t.Fatalf("expected no volume anomaly, got %+v", a)
	}
}

func TestSentimentShift(t *testing.T) {
	d := newTestDetector()
	for i := 0; i < 9; i++ {
		d.RecordSentiment(models.SentimentPoint{Symbol: "BTC", Score: 0})
	}
	d.RecordSentiment(models.SentimentPoint{Symbol: "BTC", Score: 0.6})

	got, _ := d.Scan(context.Background(), "BTC")
	a := findAnomaly(got, models.AnomalySentiment)
	if a == nil {
		t.Fatalf("expected sentiment anomaly")
	}
	if a.Severity != models.SeverityMedium || a.Direction != "bullish" {
		t.Fatalf("expected medium bullish shift, got %+v", a)
	}
}

func TestSentimentSevereShift(t *testing.T) {
	d := newTestDetector()
	for i := 0; i < 9; i++ {
		d.RecordSentiment(models.SentimentPoint{Symbol: "BTC", Score: 0.1})
	}
	d.RecordSentiment(models.SentimentPoint{Symbol: "BTC", Score: -0.8})

	got, _ := d.Scan(context.Background(), "BTC")
	a := findAnomaly(got, models.AnomalySentiment)
	if a == nil || a.Severity != models.SeverityHigh || a.Direction != "bearish" {
		t.Fatalf("expected high bearish shift, got %+v", a)
	}
}

func TestSentimentNeedsTenReadings(t *testing.T) {
	d := newTestDetector()
	for i := 0; i < 9; i++ {
		d.RecordSentiment(models.SentimentPoint{Symbol: "BTC", Score: float64(i)})
	}

	got, _ := d.Scan(context.Background(), "BTC")
	if a := findAnomaly(got, models.AnomalySentiment); a != nil {
		t.Fatalf("expected no anomaly with 9 readings, got %+v", a)
	}
}

func TestWhaleSuspicionAdditivity(t *testing.T) {
	d := newTestDetector()
	tx := models.WhaleTransaction{
		Hash:        "0xabc",
		Symbol:      "ETH",
		AmountUSD:   2_000_000,
		From:        "0xsender",
		Destination: "mixer",
		Timestamp:   time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC),
	}

	a, err := d.ScreenTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if a == nil {
		t.Fatalf("expected 0.3+0.3=0.6 to be flagged")
	}
	if a.Score != 0.6 {
		t.Fatalf("expected score 0.6, got %v", a.Score)
	}
	if a.Severity != models.SeverityMedium {
		t.Fatalf("0.6 <= 0.7 must be medium, got %s", a.Severity)
	}
	if len(a.Reasons) != 2 {
		t.Fatalf("expected two reasons, got %v", a.Reasons)
	}
}

func TestWhaleBelowThresholdIgnored(t *testing.T) {
	d := newTestDetector()
	tx := models.WhaleTransaction{
		AmountUSD:   500_000,
		Destination: "mixer",
		Timestamp:   time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC),
	}

	a, err := d.ScreenTransaction(context.Background(), tx)
	if err != nil || a != nil {
		t.Fatalf("expected sub-threshold transaction to be ignored, got %+v %v", a, err)
	}
}

func TestWhaleRepeatedSender(t *testing.T) {
	d := newTestDetector()
	base := time.Date(2026, 1, 1, 2, 10, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		// Off-hours only (0.3) stays below the 0.5 flag threshold.
		tx := models.WhaleTransaction{
			AmountUSD:   1_500_000,
			From:        "0xsender",
			Destination: "exchange",
			Timestamp:   base.Add(time.Duration(i) * 10 * time.Minute),
		}
		if a, _ := d.ScreenTransaction(context.Background(), tx); a != nil {
			t.Fatalf("expected early transactions unflagged, got %+v", a)
		}
	}

	// Fourth transfer has 3 priors within the hour; at 03:00 it also picks
	// up the off-hours weight: 0.4+0.3=0.7 -> medium (high requires >0.7).
	tx := models.WhaleTransaction{
		AmountUSD:   1_500_000,
		From:        "0xsender",
		Destination: "exchange",
		Timestamp:   time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC),
	}
	a, _ := d.ScreenTransaction(context.Background(), tx)
	if a == nil {
		t.Fatalf("expected repeated-sender transaction flagged")
	}
	if a.Score != 0.7 || a.Severity != models.SeverityMedium {
		t.Fatalf("expected score 0.7/medium, got %v/%s", a.Score, a.Severity)
	}
}
