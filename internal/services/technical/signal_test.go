package technical

import (
	"strings"
	"testing"

	"CoinSentry/internal/domain/models"
)

func TestSignalAllBullishVotes(t *testing.T) {
	ta := &models.TechnicalAnalysis{
		RSI:       models.RSIResult{Value: 25},
		MACD:      models.MACDResult{Hist: 0.3, Trend: models.MACDBullishCrossover},
		Bollinger: models.BollingerResult{Position: models.BollingerBelowLower},
		MAs:       models.MovingAverages{Trend: models.TrendStrongBullish},
	}

	sig := GenerateSignal(ta, 30, 70)
	if sig.Action != models.ActionBuy {
		t.Fatalf("expected BUY, got %s", sig.Action)
	}
	if sig.Strength != 1.0 {
		t.Fatalf("expected strength 1.0, got %v", sig.Strength)
	}
	if len(sig.Reasons) != 4 {
		t.Fatalf("expected 4 reasons, got %v", sig.Reasons)
	}
	if !strings.HasPrefix(sig.Reasons[0], "RSI oversold") {
		t.Fatalf("reasons out of order: %v", sig.Reasons)
	}
}

func TestSignalMajorityWins(t *testing.T) {
	// MACD bearish crossover (+2 sell) against Bollinger below lower (+1 buy).
	ta := &models.TechnicalAnalysis{
		RSI:       models.RSIResult{Value: 50},
		MACD:      models.MACDResult{Hist: -0.2, Trend: models.MACDBearishCrossover},
		Bollinger: models.BollingerResult{Position: models.BollingerBelowLower},
		MAs:       models.MovingAverages{Trend: models.TrendNeutral},
	}

	sig := GenerateSignal(ta, 30, 70)
	if sig.Action != models.ActionSell {
		t.Fatalf("expected SELL, got %s", sig.Action)
	}
	if want := 2.0 / 3.0; sig.Strength != want {
		t.Fatalf("expected strength %v, got %v", want, sig.Strength)
	}
}

func TestSignalTieIsNeutral(t *testing.T) {
	ta := &models.TechnicalAnalysis{
		RSI:       models.RSIResult{Value: 75},
		MACD:      models.MACDResult{Trend: models.MACDNeutral},
		Bollinger: models.BollingerResult{Position: models.BollingerBelowLower},
		MAs:       models.MovingAverages{Trend: models.TrendNeutral},
	}

	sig := GenerateSignal(ta, 30, 70)
	if sig.Action != models.ActionNeutral || sig.Strength != 0 {
		t.Fatalf("expected neutral tie, got %s %v", sig.Action, sig.Strength)
	}
}

func TestSignalNoVotes(t *testing.T) {
	ta := &models.TechnicalAnalysis{
		RSI:       models.RSIResult{Value: 50},
		MACD:      models.MACDResult{Trend: models.MACDNeutral},
		Bollinger: models.BollingerResult{Position: models.BollingerNeutral},
		MAs:       models.MovingAverages{Trend: models.TrendNeutral},
	}

	sig := GenerateSignal(ta, 30, 70)
	if sig.Action != models.ActionNeutral || sig.Strength != 0 || len(sig.Reasons) != 0 {
		t.Fatalf("expected empty neutral signal, got %+v", sig)
	}
}

func TestSignalCrossoverNeedsHistogramSign(t *testing.T) {
	// A bullish crossover tag with a non-positive histogram casts no vote.
	ta := &models.TechnicalAnalysis{
		RSI:       models.RSIResult{Value: 50},
		MACD:      models.MACDResult{Hist: -0.1, Trend: models.MACDBullishCrossover},
		Bollinger: models.BollingerResult{Position: models.BollingerNeutral},
		MAs:       models.MovingAverages{Trend: models.TrendNeutral},
	}

	sig := GenerateSignal(ta, 30, 70)
	if sig.Action != models.ActionNeutral || len(sig.Reasons) != 0 {
		t.Fatalf("expected no votes, got %+v", sig)
	}
}
