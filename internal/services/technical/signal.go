package technical

import (
	"fmt"

	"CoinSentry/internal/domain/models"
)

// GenerateSignal votes a directional recommendation from the indicator
// bundle. Each contributing indicator appends a reason in evaluation order:
// RSI, MACD, Bollinger, moving averages.
func GenerateSignal(ta *models.TechnicalAnalysis, oversold, overbought float64) models.Signal {
	sig := models.Signal{Action: models.ActionNeutral, Reasons: []string{}}
	buy, sell := 0, 0

	if ta.RSI.Value < oversold {
		buy++
		sig.Reasons = append(sig.Reasons, fmt.Sprintf("RSI oversold (%.1f)", ta.RSI.Value))
	} else if ta.RSI.Value > overbought {
		sell++
		sig.Reasons = append(sig.Reasons, fmt.Sprintf("RSI overbought (%.1f)", ta.RSI.Value))
	}

	if ta.MACD.Hist > 0 && ta.MACD.Trend == models.MACDBullishCrossover {
		buy += 2
		sig.Reasons = append(sig.Reasons, "MACD bullish crossover")
	} else if ta.MACD.Hist < 0 && ta.MACD.Trend == models.MACDBearishCrossover {
		sell += 2
		sig.Reasons = append(sig.Reasons, "MACD bearish crossover")
	}

	switch ta.Bollinger.Position {
	case models.BollingerBelowLower:
		buy++
		sig.Reasons = append(sig.Reasons, "price below lower Bollinger band")
	case models.BollingerAboveUpper:
		sell++
		sig.Reasons = append(sig.Reasons, "price above upper Bollinger band")
	}

	switch ta.MAs.Trend {
	case models.TrendStrongBullish:
		buy++
		sig.Reasons = append(sig.Reasons, "strongly bullish moving-average stack")
	case models.TrendStrongBearish:
		sell++
		sig.Reasons = append(sig.Reasons, "strongly bearish moving-average stack")
	}

	total := buy + sell
	if total == 0 {
		return sig
	}
	if buy > sell {
		sig.Action = models.ActionBuy
		sig.Strength = float64(buy) / float64(total)
	} else if sell > buy {
		sig.Action = models.ActionSell
		sig.Strength = float64(sell) / float64(total)
	}
	return sig
}
