package technical

import (
	"math"

	"CoinSentry/internal/domain/models"
)

const stochEpsilon = 1e-10

// SMA computes a simple rolling mean. Partial windows at the start use as
// many points as available, so the output has the same length as the input.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
			out[i] = sum / float64(period)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// EMA computes a recursive exponential moving average seeded with the first
// value, alpha = 2/(period+1).
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes the Relative Strength Index series from closes. Gains and
// losses are smoothed exponentially with span=period. Positions where the
// value is undefined (the very first sample, or an all-zero start) hold the
// neutral fallback 50.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = 50
	}
	if len(closes) < 2 {
		return out
	}

	alpha := 2.0 / (float64(period) + 1.0)
	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}

		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// MACD returns the MACD line, signal line and histogram series.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMA(line, signal)

	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// MACDTrend classifies the last histogram transition.
func MACDTrend(hist []float64) string {
	if len(hist) < 2 {
		return models.MACDNeutral
	}
	prev, cur := hist[len(hist)-2], hist[len(hist)-1]
	switch {
	case cur > 0 && prev <= 0:
		return models.MACDBullishCrossover
	case cur < 0 && prev >= 0:
		return models.MACDBearishCrossover
	default:
		return models.MACDNeutral
	}
}

// Bollinger computes upper/middle/lower bands. The middle band is SMA(period)
// and the band width is k rolling sample standard deviations. Windows shorter
// than two points collapse to the middle band.
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower []float64) {
	middle = SMA(closes, period)
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))

	for i := range closes {
		start := i - period + 1
		if start < 0 {
			start = 0
		}
		window := closes[start : i+1]
		sd := sampleStd(window, middle[i])
		upper[i] = middle[i] + k*sd
		lower[i] = middle[i] - k*sd
	}
	return upper, middle, lower
}

func sampleStd(window []float64, mean float64) float64 {
	if len(window) < 2 {
		return 0
	}
	var ss float64
	for _, v := range window {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(window)-1))
}

// Stochastic computes the smoothed %K and %D oscillator values for the
// latest bar. Positions where the raw oscillator is undefined hold the
// neutral fallback 50.
func Stochastic(bars []models.Bar, fastK, slowK, slowD int) (k, d float64) {
	if len(bars) == 0 {
		return 50, 50
	}

	raw := make([]float64, len(bars))
	for i := range bars {
		if i < fastK-1 {
			raw[i] = 50
			continue
		}
		lo, hi := bars[i].Low, bars[i].High
		for j := i - fastK + 1; j <= i; j++ {
			if bars[j].Low < lo {
				lo = bars[j].Low
			}
			if bars[j].High > hi {
				hi = bars[j].High
			}
		}
		raw[i] = 100 * (bars[i].Close - lo) / (hi - lo + stochEpsilon)
	}

	kSeries := SMA(raw, slowK)
	dSeries := SMA(kSeries, slowD)
	return kSeries[len(kSeries)-1], dSeries[len(dSeries)-1]
}

// ATR computes the average true range of the latest bar as a rolling mean
// over period true ranges (fewer if history is shorter).
func ATR(bars []models.Bar, period int) float64 {
	if len(bars) == 0 {
		return 0
	}

	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		tr[i] = math.Max(bars[i].High-bars[i].Low,
			math.Max(math.Abs(bars[i].High-prevClose), math.Abs(bars[i].Low-prevClose)))
	}

	return SMA(tr, period)[len(tr)-1]
}

// Fibonacci computes retracement levels anchored from the window's max high
// down across its full range.
func Fibonacci(bars []models.Bar) map[string]float64 {
	if len(bars) == 0 {
		return map[string]float64{}
	}

	high, low := bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}

	span := high - low
	levels := map[string]float64{
		"0.0":   high,
		"0.236": high - span*0.236,
		"0.382": high - span*0.382,
		"0.5":   high - span*0.5,
		"0.618": high - span*0.618,
		"0.786": high - span*0.786,
		"1.0":   low,
	}
	return levels
}

// Divergence compares the direction of price extremes against the direction
// of an oscillator over two adjacent lookback windows.
func Divergence(closes, indicator []float64, window int) string {
	n := len(closes)
	if n < 2*window || len(indicator) != n {
		return "none"
	}

	recentHigh := maxOf(closes[n-window:])
	prevHigh := maxOf(closes[n-2*window+1 : n-window+1])
	recentLow := minOf(closes[n-window:])
	prevLow := minOf(closes[n-2*window+1 : n-window+1])

	priceTrend := "neutral"
	if recentHigh > prevHigh {
		priceTrend = "up"
	} else if recentLow < prevLow {
		priceTrend = "down"
	}

	indicatorTrend := "neutral"
	if indicator[n-1] > indicator[n-window] {
		indicatorTrend = "up"
	} else if indicator[n-1] < indicator[n-window] {
		indicatorTrend = "down"
	}

	switch {
	case priceTrend == "up" && indicatorTrend == "down":
		return "bearish_divergence"
	case priceTrend == "down" && indicatorTrend == "up":
		return "bullish_divergence"
	default:
		return "none"
	}
}

func maxOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
