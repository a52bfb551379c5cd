package features

import (
	"math"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
)

func barsFromCloses(closes []float64) []models.Bar {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Bucket: t0.Add(time.Duration(i) * time.Minute),
			Symbol: "BTC",
			Close:  c,
		}
	}
	return bars
}

func TestComputeLogReturns(t *testing.T) {
	got := ComputeLogReturns(barsFromCloses([]float64{100, 110, 99}))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if math.Abs(got[0]-math.Log(1.1)) > 1e-12 {
		t.Fatalf("r[0] = %v, want ln(1.1)", got[0])
	}
	if math.Abs(got[1]-math.Log(0.9)) > 1e-12 {
		t.Fatalf("r[1] = %v, want ln(0.9)", got[1])
	}
}

func TestComputeLogReturnsShortAndBadInput(t *testing.T) {
	if got := ComputeLogReturns(barsFromCloses([]float64{100})); got != nil {
		t.Fatalf("single bar: got %v, want nil", got)
	}
	got := ComputeLogReturns(barsFromCloses([]float64{100, 0, 50}))
	if got[0] != 0 || got[1] != 0 {
		t.Fatalf("non-positive close: got %v, want zeros", got)
	}
}

func TestRealizedVolatility(t *testing.T) {
	flat := make([]float64, 60)
	if v := RealizedVolatility(flat, 60, BarsPerYearForTF("1m")); v != 0 {
		t.Fatalf("flat series vol = %v, want 0", v)
	}
	if v := RealizedVolatility(flat[:10], 60, BarsPerYearForTF("1m")); v != 0 {
		t.Fatalf("short series vol = %v, want 0", v)
	}

	alt := make([]float64, 60)
	for i := range alt {
		if i%2 == 0 {
			alt[i] = 0.01
		} else {
			alt[i] = -0.01
		}
	}
	if v := RealizedVolatility(alt, 60, BarsPerYearForTF("1m")); v <= 0 {
		t.Fatalf("alternating series vol = %v, want > 0", v)
	}
}

func TestBarsPerYearForSpacing(t *testing.T) {
	cases := []struct {
		spacing time.Duration
		tf      string
	}{
		{time.Minute, "1m"},
		{5 * time.Minute, "5m"},
		{time.Hour, "1h"},
	}
	for _, tc := range cases {
		got := BarsPerYearForSpacing(tc.spacing)
		want := BarsPerYearForTF(tc.tf)
		if math.Abs(got-want) > 1e-6 {
			t.Fatalf("spacing %v: got %v, want %v", tc.spacing, got, want)
		}
	}
	if got := BarsPerYearForSpacing(0); got != BarsPerYearForTF("1m") {
		t.Fatalf("zero spacing: got %v, want 1m fallback", got)
	}
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2026, 1, 1, 10, 7, 33, 0, time.UTC)
	to := time.Date(2026, 1, 1, 11, 59, 59, 0, time.UTC)

	f, tt := AlignFromTo(from, to, "5m")
	if f.Minute() != 5 || f.Second() != 0 {
		t.Fatalf("5m aligned from = %v", f)
	}
	if tt.Minute() != 55 || tt.Second() != 0 {
		t.Fatalf("5m aligned to = %v", tt)
	}

	f, tt = AlignFromTo(from, to, "1h")
	if f.Minute() != 0 || tt.Hour() != 11 || tt.Minute() != 0 {
		t.Fatalf("1h aligned = %v / %v", f, tt)
	}
}
