package technical

import (
	"sort"

	"CoinSentry/internal/domain/models"
)

// SupportResistance extracts pivot-based support and resistance levels.
// A bar is a pivot high when its high equals the max over a centered window
// of +/- pivotWindow bars (symmetric for pivot lows). Pivots are clustered
// by relative proximity and each cluster collapses to its mean; the first
// maxLevels clusters in ascending price order are returned.
func SupportResistance(bars []models.Bar, pivotWindow int, clusterThreshold float64, maxLevels int) (support, resistance []float64) {
	var highs, lows []float64

	for i := pivotWindow; i < len(bars)-pivotWindow; i++ {
		isHigh, isLow := true, true
		for j := i - pivotWindow; j <= i+pivotWindow; j++ {
			if bars[j].High > bars[i].High {
				isHigh = false
			}
			if bars[j].Low < bars[i].Low {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, bars[i].High)
		}
		if isLow {
			lows = append(lows, bars[i].Low)
		}
	}

	support = clusterLevels(lows, clusterThreshold, maxLevels)
	resistance = clusterLevels(highs, clusterThreshold, maxLevels)
	return support, resistance
}

func clusterLevels(levels []float64, threshold float64, maxLevels int) []float64 {
	if len(levels) == 0 {
		return nil
	}

	sorted := append([]float64(nil), levels...)
	sort.Float64s(sorted)

	clusters := [][]float64{{sorted[0]}}
	for _, level := range sorted[1:] {
		last := clusters[len(clusters)-1]
		anchor := last[len(last)-1]
		if (level-anchor)/anchor < threshold {
			clusters[len(clusters)-1] = append(last, level)
		} else {
			clusters = append(clusters, []float64{level})
		}
	}

	out := make([]float64, 0, len(clusters))
	for _, c := range clusters {
		var sum float64
		for _, v := range c {
			sum += v
		}
		out = append(out, sum/float64(len(c)))
	}
	if maxLevels > 0 && len(out) > maxLevels {
		out = out[:maxLevels]
	}
	return out
}

// ComputeLevels bundles support/resistance clusters with Fibonacci
// retracements over the same window.
func ComputeLevels(bars []models.Bar, pivotWindow int, clusterThreshold float64, maxLevels int) models.Levels {
	support, resistance := SupportResistance(bars, pivotWindow, clusterThreshold, maxLevels)
	return models.Levels{
		Support:    support,
		Resistance: resistance,
		Fibonacci:  Fibonacci(bars),
	}
}
