package technical

import (
	"fmt"
	"strings"

	"CoinSentry/internal/domain/models"
)

// RenderReport formats an analysis bundle as a plain-text summary suitable
// for notification sinks.
func RenderReport(ta *models.TechnicalAnalysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Technical analysis %s @ %.6g\n", ta.Symbol, ta.LastPrice)
	fmt.Fprintf(&b, "RSI(14): %.1f [%s]", ta.RSI.Value, ta.RSI.Status)
	if ta.RSI.Divergence != "none" {
		fmt.Fprintf(&b, " divergence: %s", ta.RSI.Divergence)
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "MACD hist: %.6g [%s]\n", ta.MACD.Hist, ta.MACD.Trend)
	fmt.Fprintf(&b, "Bollinger: %s\n", ta.Bollinger.Position)
	fmt.Fprintf(&b, "Stochastic: K=%.1f D=%.1f [%s]\n", ta.Stochastic.K, ta.Stochastic.D, ta.Stochastic.Status)
	fmt.Fprintf(&b, "MA trend: %s, ATR: %.6g\n", ta.MAs.Trend, ta.ATR)

	if len(ta.Patterns) > 0 {
		names := make([]string, len(ta.Patterns))
		for i, p := range ta.Patterns {
			names[i] = fmt.Sprintf("%s (%s)", p.Name, p.Kind)
		}
		fmt.Fprintf(&b, "Patterns: %s\n", strings.Join(names, ", "))
	}
	if len(ta.Levels.Support) > 0 {
		fmt.Fprintf(&b, "Support: %s\n", joinLevels(ta.Levels.Support))
	}
	if len(ta.Levels.Resistance) > 0 {
		fmt.Fprintf(&b, "Resistance: %s\n", joinLevels(ta.Levels.Resistance))
	}

	fmt.Fprintf(&b, "Signal: %s (strength %.2f)", ta.Signal.Action, ta.Signal.Strength)
	if len(ta.Signal.Reasons) > 0 {
		fmt.Fprintf(&b, " - %s", strings.Join(ta.Signal.Reasons, "; "))
	}
	b.WriteByte('\n')
	return b.String()
}

func joinLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, v := range levels {
		parts[i] = fmt.Sprintf("%.6g", v)
	}
	return strings.Join(parts, ", ")
}
