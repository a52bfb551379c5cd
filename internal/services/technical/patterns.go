package technical

import "CoinSentry/internal/domain/models"

// Candlestick pattern names.
const (
	PatternHammer           = "hammer"
	PatternShootingStar     = "shooting_star"
	PatternDoji             = "doji"
	PatternBullishEngulfing = "bullish_engulfing"
	PatternBearishEngulfing = "bearish_engulfing"
	PatternMorningStar      = "morning_star"
)

const patternStrength = 100

// DetectPatterns inspects the last three bars for candlestick formations.
// Patterns are not mutually exclusive; several may fire on the same bar.
func DetectPatterns(bars []models.Bar) []models.Pattern {
	if len(bars) == 0 {
		return nil
	}

	var out []models.Pattern
	add := func(name, kind string) {
		out = append(out, models.Pattern{Name: name, Kind: kind, Strength: patternStrength})
	}

	cur := bars[len(bars)-1]
	body := cur.Body()
	upper := cur.High - max2(cur.Open, cur.Close)
	lower := min2(cur.Open, cur.Close) - cur.Low

	if lower > 2*body && upper < 0.3*body {
		add(PatternHammer, "bullish")
	}
	if upper > 2*body && lower < 0.3*body {
		add(PatternShootingStar, "bearish")
	}
	if rng := cur.Range(); rng > 0 && body/rng < 0.1 {
		add(PatternDoji, "neutral")
	}

	if len(bars) >= 2 {
		prev := bars[len(bars)-2]
		if !prev.Bullish() && cur.Bullish() &&
			cur.Open <= min2(prev.Open, prev.Close) && cur.Close >= max2(prev.Open, prev.Close) {
			add(PatternBullishEngulfing, "bullish")
		}
		if prev.Bullish() && !cur.Bullish() &&
			cur.Open >= max2(prev.Open, prev.Close) && cur.Close <= min2(prev.Open, prev.Close) {
			add(PatternBearishEngulfing, "bearish")
		}
	}

	if len(bars) >= 3 {
		first := bars[len(bars)-3]
		mid := bars[len(bars)-2]
		firstBody := first.Body()
		if !first.Bullish() && firstBody > 0 &&
			mid.Body() < 0.3*firstBody &&
			cur.Bullish() && cur.Close > (first.High+first.Low)/2 {
			add(PatternMorningStar, "bullish")
		}
	}

	return out
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
