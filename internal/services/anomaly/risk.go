package anomaly

import (
	"context"
	"time"

	"CoinSentry/internal/domain/models"
)

// AssessRisk combines price volatility, volume irregularity and detected
// manipulation patterns into one [0,1] score. Factors with insufficient
// history default to zero rather than failing.
func (d *Detector) AssessRisk(_ context.Context, symbol string) (models.RiskAssessment, error) {
	factors := models.RiskFactors{}

	prices := d.hist.Prices(symbol, d.cfg.RiskWindow)
	if len(prices) >= d.cfg.RiskWindow {
		factors.PriceVolatility = clamp01(10 * coefficientOfVariation(prices))
	}

	volumes := d.hist.Volumes(symbol, d.cfg.RiskWindow)
	if len(volumes) >= d.cfg.RiskWindow {
		factors.VolumeIrregularity = clamp01(coefficientOfVariation(volumes) / 2)
	}

	switch d.identifyPattern(d.hist.Prices(symbol, 0)) {
	case models.PatternPumpAndDump, models.PatternFlashCrash:
		factors.PatternRisk = 0.8
	case models.PatternFomoRally:
		factors.PatternRisk = 0.6
	}

	score := (factors.PriceVolatility + factors.VolumeIrregularity + factors.PatternRisk) / 3

	return models.RiskAssessment{
		Symbol:    symbol,
		Score:     score,
		Level:     d.riskLevel(score),
		Factors:   factors,
		Timestamp: time.Now().UTC(),
	}, nil
}

// riskLevel maps a score to a level. High is strict (>0.7); a score sitting
// exactly on the medium boundary still counts as medium.
func (d *Detector) riskLevel(score float64) string {
	switch {
	case score > d.cfg.RiskHighLevel:
		return models.RiskHigh
	case score >= d.cfg.RiskMediumLevel:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
