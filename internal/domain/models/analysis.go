package models

import "time"

// RSI statuses.
const (
	RSIOversold   = "oversold"
	RSIOverbought = "overbought"
	RSINeutral    = "neutral"
)

// MACD trends.
const (
	MACDBullishCrossover = "bullish_crossover"
	MACDBearishCrossover = "bearish_crossover"
	MACDNeutral          = "neutral"
)

// Bollinger positions.
const (
	BollingerBelowLower = "below_lower"
	BollingerAboveUpper = "above_upper"
	BollingerNeutral    = "neutral"
)

// Moving-average trends.
const (
	TrendStrongBullish = "strong_bullish"
	TrendStrongBearish = "strong_bearish"
	TrendBullish       = "bullish"
	TrendBearish       = "bearish"
	TrendNeutral       = "neutral"
)

// Signal actions.
const (
	ActionBuy     = "BUY"
	ActionSell    = "SELL"
	ActionNeutral = "NEUTRAL"
)

type RSIResult struct {
	Value      float64
	Series     []float64
	Status     string // oversold | overbought | neutral
	Divergence string // "bearish_divergence", "bullish_divergence" or "none"
}

type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
	Hist      float64 // latest histogram value
	Trend     string
}

type BollingerResult struct {
	Upper    []float64
	Middle   []float64
	Lower    []float64
	Position string // below_lower | above_upper | neutral
}

type StochasticResult struct {
	K      float64
	D      float64
	Status string // oversold | overbought | neutral
}

type MovingAverages struct {
	EMA   map[int][]float64 // periods 9, 21, 50, 200
	SMA   map[int][]float64 // periods 20, 50, 200
	Trend string
}

// Pattern is a recognized candlestick formation on the latest bars.
type Pattern struct {
	Name     string  // "hammer", "doji", "bullish_engulfing", ...
	Kind     string  // "bullish", "bearish" or "indecision"
	Strength float64 // 0-100
}

// Levels holds clustered support and resistance prices plus Fibonacci
// retracements derived from the recent high/low range.
type Levels struct {
	Support    []float64
	Resistance []float64
	Fibonacci  map[string]float64 // "0.382" -> price
}

// Signal is the composite trade recommendation voted from indicators.
type Signal struct {
	Action   string // BUY | SELL | NEUTRAL
	Strength float64
	Reasons  []string
}

// TechnicalAnalysis is the full indicator bundle for one instrument.
type TechnicalAnalysis struct {
	Symbol     string
	Timestamp  time.Time
	LastPrice  float64
	RSI        RSIResult
	MACD       MACDResult
	Bollinger  BollingerResult
	Stochastic StochasticResult
	MAs        MovingAverages
	ATR        float64
	// RealizedVol is the annualized realized volatility of minute closes,
	// zero when the window is too short.
	RealizedVol float64
	Patterns   []Pattern
	Levels     Levels
	Signal     Signal
}
