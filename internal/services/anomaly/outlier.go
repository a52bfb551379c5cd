package anomaly

import "math"

const epsilon = 1e-8

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func std(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// coefficientOfVariation is std/mean with a small-denominator guard.
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	return std(values, m) / (math.Abs(m) + epsilon)
}

// latestIsOutlier ranks every value by |z-score| and reports whether the
// most recent one belongs to the ceil(contamination*n) most extreme points.
// This replaces a per-call isolation-forest refit with an equivalent
// statistical ranking over the same window.
func latestIsOutlier(values []float64, contamination float64) bool {
	n := len(values)
	if n == 0 {
		return false
	}

	m := mean(values)
	sd := std(values, m)
	if sd < epsilon {
		return false
	}

	zLast := math.Abs((values[n-1] - m) / sd)
	moreExtreme := 0
	for _, v := range values[:n-1] {
		if math.Abs((v-m)/sd) > zLast {
			moreExtreme++
		}
	}

	budget := int(math.Ceil(contamination * float64(n)))
	return moreExtreme < budget
}
