package technical

import (
	"context"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/services/features"
	"CoinSentry/pkg/logger"
)

// Config carries indicator parameters. Values mirror common charting
// defaults and are kept configurable rather than hard-coded.
type Config struct {
	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	BollingerPeriod int     `yaml:"bollinger_period"`
	BollingerK      float64 `yaml:"bollinger_k"`

	StochFastK int `yaml:"stoch_fastk"`
	StochSlowK int `yaml:"stoch_slowk"`
	StochSlowD int `yaml:"stoch_slowd"`

	ATRPeriod int `yaml:"atr_period"`

	EMAPeriods []int `yaml:"ema_periods"`
	SMAPeriods []int `yaml:"sma_periods"`

	PivotWindow      int     `yaml:"pivot_window"`
	ClusterThreshold float64 `yaml:"cluster_threshold"`
	MaxLevels        int     `yaml:"max_levels"`

	DivergenceWindow int `yaml:"divergence_window"`
}

func DefaultConfig() Config {
	return Config{
		RSIPeriod:     14,
		RSIOversold:   30,
		RSIOverbought: 70,

		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,

		BollingerPeriod: 20,
		BollingerK:      2,

		StochFastK: 14,
		StochSlowK: 3,
		StochSlowD: 3,

		ATRPeriod: 14,

		EMAPeriods: []int{9, 21, 50, 200},
		SMAPeriods: []int{20, 50, 200},

		PivotWindow:      20,
		ClusterThreshold: 0.02,
		MaxLevels:        3,

		DivergenceWindow: 5,
	}
}

// Analyzer computes the full indicator bundle for one instrument. It is
// stateless; identical input bars yield identical output.
type Analyzer struct {
	cfg Config
	log *logger.Logger
}

func NewAnalyzer(cfg Config, log *logger.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, log: log}
}

// Analyze runs every indicator, the pattern recognizer, the level detector
// and the signal generator over bars. Sequences shorter than an indicator's
// period degrade to neutral output rather than fail; only an empty series is
// reported as unavailable data.
func (a *Analyzer) Analyze(_ context.Context, symbol string, bars []models.Bar) (*models.TechnicalAnalysis, error) {
	if len(bars) == 0 {
		return nil, models.ErrDataUnavailable
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	last := closes[len(closes)-1]

	ta := &models.TechnicalAnalysis{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		LastPrice: last,
	}

	rsiSeries := RSI(closes, a.cfg.RSIPeriod)
	rsi := rsiSeries[len(rsiSeries)-1]
	ta.RSI = models.RSIResult{
		Value:      rsi,
		Series:     rsiSeries,
		Status:     classifyRSI(rsi, a.cfg.RSIOversold, a.cfg.RSIOverbought),
		Divergence: Divergence(closes, rsiSeries, a.cfg.DivergenceWindow),
	}

	line, sig, hist := MACD(closes, a.cfg.MACDFast, a.cfg.MACDSlow, a.cfg.MACDSignal)
	ta.MACD = models.MACDResult{
		Line:      line,
		Signal:    sig,
		Histogram: hist,
		Hist:      hist[len(hist)-1],
		Trend:     MACDTrend(hist),
	}

	upper, middle, lower := Bollinger(closes, a.cfg.BollingerPeriod, a.cfg.BollingerK)
	ta.Bollinger = models.BollingerResult{
		Upper:    upper,
		Middle:   middle,
		Lower:    lower,
		Position: classifyBollinger(last, upper[len(upper)-1], lower[len(lower)-1], len(closes) >= 2),
	}

	k, d := Stochastic(bars, a.cfg.StochFastK, a.cfg.StochSlowK, a.cfg.StochSlowD)
	ta.Stochastic = models.StochasticResult{K: k, D: d, Status: classifyStochastic(k)}

	ta.MAs = a.movingAverages(closes)
	ta.ATR = ATR(bars, a.cfg.ATRPeriod)
	spacing := time.Minute
	if len(bars) >= 2 {
		spacing = bars[1].Bucket.Sub(bars[0].Bucket)
	}
	ta.RealizedVol = features.RealizedVolatility(
		features.ComputeLogReturns(bars), 60, features.BarsPerYearForSpacing(spacing))
	ta.Patterns = DetectPatterns(bars)
	ta.Levels = ComputeLevels(bars, a.cfg.PivotWindow, a.cfg.ClusterThreshold, a.cfg.MaxLevels)
	ta.Signal = GenerateSignal(ta, a.cfg.RSIOversold, a.cfg.RSIOverbought)

	if a.log != nil {
		a.log.Debug("technical analysis computed",
			logger.String("symbol", symbol),
			logger.Int("bars", len(bars)),
			logger.String("action", ta.Signal.Action))
	}
	return ta, nil
}

func (a *Analyzer) movingAverages(closes []float64) models.MovingAverages {
	mas := models.MovingAverages{
		EMA:   make(map[int][]float64, len(a.cfg.EMAPeriods)),
		SMA:   make(map[int][]float64, len(a.cfg.SMAPeriods)),
		Trend: models.TrendNeutral,
	}
	for _, p := range a.cfg.EMAPeriods {
		mas.EMA[p] = EMA(closes, p)
	}
	for _, p := range a.cfg.SMAPeriods {
		mas.SMA[p] = SMA(closes, p)
	}

	ema9, ok9 := lastOf(mas.EMA[9])
	ema21, ok21 := lastOf(mas.EMA[21])
	sma50, ok50 := lastOf(mas.SMA[50])
	if !ok9 || !ok21 || !ok50 {
		return mas
	}

	switch {
	case ema9 > ema21 && ema21 > sma50:
		mas.Trend = models.TrendStrongBullish
	case ema9 < ema21 && ema21 < sma50:
		mas.Trend = models.TrendStrongBearish
	case ema9 > ema21:
		mas.Trend = models.TrendBullish
	case ema9 < ema21:
		mas.Trend = models.TrendBearish
	}
	return mas
}

func classifyRSI(v, oversold, overbought float64) string {
	switch {
	case v < oversold:
		return models.RSIOversold
	case v > overbought:
		return models.RSIOverbought
	default:
		return models.RSINeutral
	}
}

func classifyBollinger(price, upper, lower float64, defined bool) string {
	if !defined {
		return models.BollingerNeutral
	}
	switch {
	case price < lower:
		return models.BollingerBelowLower
	case price > upper:
		return models.BollingerAboveUpper
	default:
		return models.BollingerNeutral
	}
}

func classifyStochastic(k float64) string {
	switch {
	case k < 20:
		return models.RSIOversold
	case k > 80:
		return models.RSIOverbought
	default:
		return models.RSINeutral
	}
}

func lastOf(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}
