package models

import "time"

// Anomaly types.
const (
	AnomalyPrice     = "price_anomaly"
	AnomalyVolume    = "volume_anomaly"
	AnomalySentiment = "sentiment_shift"
	AnomalyWhale     = "whale_activity"
	AnomalyPattern   = "market_pattern"
)

// Anomaly severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

// Named market pattern identifiers.
const (
	PatternPumpAndDump = "pump_and_dump"
	PatternFlashCrash  = "flash_crash"
	PatternFomoRally   = "fomo_rally"
)

// Risk levels.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// Anomaly is a flagged irregularity on a single instrument.
type Anomaly struct {
	Symbol    string
	Type      string
	Severity  string
	Score     float64
	Direction string // "bullish", "bearish" or "" when not applicable
	Pattern   string // set for market_pattern anomalies
	Reasons   []string
	Details   map[string]float64
	Timestamp time.Time
}

// RiskFactors are the normalized [0,1] components of a risk score.
type RiskFactors struct {
	PriceVolatility    float64
	VolumeIrregularity float64
	PatternRisk        float64
}

// RiskAssessment is the composite manipulation-risk verdict.
type RiskAssessment struct {
	Symbol    string
	Score     float64
	Level     string // high | medium | low
	Factors   RiskFactors
	Timestamp time.Time
}
