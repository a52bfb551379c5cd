package anomaly

import "CoinSentry/internal/domain/models"

// identifyPattern names the dominant manipulation pattern in prices, or
// returns "" when nothing matches. Checks run in a fixed precedence:
// pump_and_dump, flash_crash, fomo_rally; the first hit wins.
func (d *Detector) identifyPattern(prices []float64) string {
	if len(prices) < d.cfg.PatternMinimum {
		return ""
	}
	if len(prices) > d.cfg.PatternWindow {
		prices = prices[len(prices)-d.cfg.PatternWindow:]
	}

	if d.isPumpAndDump(prices) {
		return models.PatternPumpAndDump
	}
	if d.isFlashCrash(prices) {
		return models.PatternFlashCrash
	}
	if d.isFomoRally(prices) {
		return models.PatternFomoRally
	}
	return ""
}

// isPumpAndDump requires the window's peak in its second half, a rise of at
// least PumpRise into the peak and a drop of at least PumpDrop after it.
func (d *Detector) isPumpAndDump(prices []float64) bool {
	peak := 0
	for i, p := range prices {
		if p > prices[peak] {
			peak = i
		}
	}
	if peak <= len(prices)/2 {
		return false
	}

	base := peak - d.cfg.PatternLeg
	if base < 0 {
		base = 0
	}
	if prices[base] <= 0 || prices[peak] <= 0 {
		return false
	}

	rise := (prices[peak] - prices[base]) / prices[base]
	drop := (prices[peak] - prices[len(prices)-1]) / prices[peak]
	return rise >= d.cfg.PumpRise && drop >= d.cfg.PumpDrop
}

// isFlashCrash requires the window's trough within its last RallyWindow
// samples and a drop of at least CrashDrop into the trough.
func (d *Detector) isFlashCrash(prices []float64) bool {
	trough := 0
	for i, p := range prices {
		if p < prices[trough] {
			trough = i
		}
	}
	if trough < len(prices)-d.cfg.RallyWindow {
		return false
	}

	base := trough - d.cfg.PatternLeg
	if base < 0 {
		base = 0
	}
	if prices[base] <= 0 {
		return false
	}

	drop := (prices[base] - prices[trough]) / prices[base]
	return drop >= d.cfg.CrashDrop
}

// isFomoRally requires more than RallyIncreases pairwise increases across
// the last RallyWindow samples.
func (d *Detector) isFomoRally(prices []float64) bool {
	window := prices
	if len(window) > d.cfg.RallyWindow {
		window = window[len(window)-d.cfg.RallyWindow:]
	}

	increases := 0
	for i := 1; i < len(window); i++ {
		if window[i] > window[i-1] {
			increases++
		}
	}
	return increases > d.cfg.RallyIncreases
}
