package models

import "time"

// Bar represents a single OHLCV candle.
type Bar struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Range returns high-low span of the bar.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Body returns the absolute open-close distance.
func (b Bar) Body() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool {
	return b.Close > b.Open
}

// Sample is a raw market observation before it is folded into history.
// Volume and Timestamp may be missing on some feeds and are substituted
// with defaults by the ingestion pipeline.
type Sample struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}

// SentimentPoint is a single aggregated sentiment reading in [-1, 1].
type SentimentPoint struct {
	Symbol    string
	Score     float64
	Timestamp time.Time
}

// WhaleTransaction is a large on-chain transfer candidate for screening.
type WhaleTransaction struct {
	Hash        string
	Symbol      string
	AmountUSD   float64
	From        string
	To          string
	Destination string // "exchange", "unknown", "mixer", "tornado", ...
	Timestamp   time.Time
}
