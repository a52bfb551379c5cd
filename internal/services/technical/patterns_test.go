package technical

import (
	"testing"

	"CoinSentry/internal/domain/models"
)

func hasPattern(patterns []models.Pattern, name string) bool {
	for _, p := range patterns {
		if p.Name == name {
			return true
		}
	}
	return false
}

func TestHammer(t *testing.T) {
	bars := []models.Bar{{Open: 100, Close: 102, High: 102.5, Low: 90}}
	got := DetectPatterns(bars)
	if !hasPattern(got, PatternHammer) {
		t.Fatalf("expected hammer, got %v", got)
	}
	if hasPattern(got, PatternDoji) || hasPattern(got, PatternShootingStar) {
		t.Fatalf("unexpected extra pattern: %v", got)
	}
}

func TestShootingStar(t *testing.T) {
	bars := []models.Bar{{Open: 100, Close: 98, High: 110, Low: 97.5}}
	got := DetectPatterns(bars)
	if !hasPattern(got, PatternShootingStar) {
		t.Fatalf("expected shooting_star, got %v", got)
	}
}

func TestDoji(t *testing.T) {
	bars := []models.Bar{{Open: 100, Close: 100.5, High: 105, Low: 95}}
	got := DetectPatterns(bars)
	if !hasPattern(got, PatternDoji) {
		t.Fatalf("expected doji, got %v", got)
	}
	for _, p := range got {
		if p.Name == PatternDoji && p.Kind != "neutral" {
			t.Fatalf("doji must be neutral, got %s", p.Kind)
		}
	}
}

func TestBullishEngulfing(t *testing.T) {
	bars := []models.Bar{
		{Open: 105, Close: 100, High: 106, Low: 99},
		{Open: 99, Close: 106, High: 107, Low: 98},
	}
	got := DetectPatterns(bars)
	if !hasPattern(got, PatternBullishEngulfing) {
		t.Fatalf("expected bullish_engulfing, got %v", got)
	}
}

func TestBearishEngulfing(t *testing.T) {
	bars := []models.Bar{
		{Open: 100, Close: 105, High: 106, Low: 99},
		{Open: 106, Close: 99, High: 107, Low: 98},
	}
	got := DetectPatterns(bars)
	if !hasPattern(got, PatternBearishEngulfing) {
		t.Fatalf("expected bearish_engulfing, got %v", got)
	}
}

func TestMorningStar(t *testing.T) {
	bars := []models.Bar{
		{Open: 110, Close: 100, High: 111, Low: 99},
		{Open: 100, Close: 101, High: 101.5, Low: 99.5},
		{Open: 101, Close: 108, High: 109, Low: 100},
	}
	got := DetectPatterns(bars)
	if !hasPattern(got, PatternMorningStar) {
		t.Fatalf("expected morning_star, got %v", got)
	}
}

func TestNoBarsNoPatterns(t *testing.T) {
	if got := DetectPatterns(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestPatternStrength(t *testing.T) {
	bars := []models.Bar{{Open: 100, Close: 102, High: 102.5, Low: 90}}
	got := DetectPatterns(bars)
	if len(got) == 0 || got[0].Strength != 100 {
		t.Fatalf("expected strength 100, got %v", got)
	}
}
