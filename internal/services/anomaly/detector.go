package anomaly

import (
	"context"
	"math"
	"sync"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/history"
	"CoinSentry/pkg/logger"
)

var mixerDestinations = map[string]bool{
	"unknown": true,
	"mixer":   true,
	"tornado": true,
}

// Detector flags statistical and rule-based market irregularities. It reads
// price/volume history from its own rolling store and additionally keeps a
// bounded sentiment history and a per-sender transaction log for whale
// screening.
type Detector struct {
	cfg  Config
	log  *logger.Logger
	hist *history.Store

	mu         sync.Mutex
	sentiments map[string][]models.SentimentPoint
	senders    map[string][]time.Time
}

func NewDetector(cfg Config, hist *history.Store, log *logger.Logger) *Detector {
	return &Detector{
		cfg:        cfg,
		log:        log,
		hist:       hist,
		sentiments: make(map[string][]models.SentimentPoint),
		senders:    make(map[string][]time.Time),
	}
}

// History exposes the detector's rolling store so the ingestion pipeline can
// append samples and snapshots can be persisted.
func (d *Detector) History() *history.Store { return d.hist }

// Scan runs the price, volume and sentiment checks for one instrument.
// Insufficient history is not an error; checks simply produce nothing.
func (d *Detector) Scan(_ context.Context, symbol string) ([]models.Anomaly, error) {
	var out []models.Anomaly

	if a := d.checkPrice(symbol); a != nil {
		out = append(out, *a)
	}
	if a := d.checkVolume(symbol); a != nil {
		out = append(out, *a)
	}
	if a := d.checkSentiment(symbol); a != nil {
		out = append(out, *a)
	}

	if d.log != nil && len(out) > 0 {
		d.log.Info("anomalies detected",
			logger.String("symbol", symbol),
			logger.Int("count", len(out)))
	}
	return out, nil
}

// checkPrice compares the current price to the one PriceWindow samples back
// and confirms candidates with an outlier ranking over OutlierWindow samples.
func (d *Detector) checkPrice(symbol string) *models.Anomaly {
	prices := d.hist.Prices(symbol, 0)
	if len(prices) < d.cfg.PriceWindow {
		return nil
	}

	current := prices[len(prices)-1]
	reference := prices[len(prices)-d.cfg.PriceWindow]
	if reference == 0 {
		return nil
	}
	change := (current - reference) / reference
	if math.Abs(change) < d.cfg.PriceChangeThreshold {
		return nil
	}

	confirm := prices
	if len(confirm) > d.cfg.OutlierWindow {
		confirm = confirm[len(confirm)-d.cfg.OutlierWindow:]
	}
	if !latestIsOutlier(confirm, d.cfg.Contamination) {
		return nil
	}

	severity := models.SeverityMedium
	if math.Abs(change) > d.cfg.PriceSevereThreshold {
		severity = models.SeverityHigh
	}
	direction := "bullish"
	if change < 0 {
		direction = "bearish"
	}

	return &models.Anomaly{
		Symbol:    symbol,
		Type:      models.AnomalyPrice,
		Severity:  severity,
		Score:     math.Abs(change),
		Direction: direction,
		Pattern:   d.identifyPattern(prices),
		Details:   map[string]float64{"change_1h": change, "price": current},
		Timestamp: time.Now().UTC(),
	}
}

// checkVolume flags the latest volume when it is both a large multiple of
// the recent mean and a >3 sigma outlier.
func (d *Detector) checkVolume(symbol string) *models.Anomaly {
	volumes := d.hist.Volumes(symbol, d.cfg.VolumeWindow)
	if len(volumes) < d.cfg.VolumeWindow {
		return nil
	}

	current := volumes[len(volumes)-1]
	m := mean(volumes)
	sd := std(volumes, m)
	if m <= 0 {
		return nil
	}

	ratio := current / m
	z := (current - m) / (sd + epsilon)
	if ratio < d.cfg.VolumeRatio || math.Abs(z) <= d.cfg.VolumeZThreshold {
		return nil
	}

	severity := models.SeverityMedium
	if ratio > d.cfg.VolumeSevereRatio {
		severity = models.SeverityHigh
	}

	return &models.Anomaly{
		Symbol:    symbol,
		Type:      models.AnomalyVolume,
		Severity:  severity,
		Score:     ratio,
		Details:   map[string]float64{"ratio": ratio, "z_score": z, "volume": current},
		Timestamp: time.Now().UTC(),
	}
}

// RecordSentiment appends one aggregated sentiment score to the per-symbol
// bounded history.
func (d *Detector) RecordSentiment(p models.SentimentPoint) {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	hist := append(d.sentiments[p.Symbol], p)
	if len(hist) > d.cfg.SentimentHistory {
		hist = hist[len(hist)-d.cfg.SentimentHistory:]
	}
	d.sentiments[p.Symbol] = hist
}

// checkSentiment compares the latest score against the mean of the nine
// readings before it.
func (d *Detector) checkSentiment(symbol string) *models.Anomaly {
	d.mu.Lock()
	hist := d.sentiments[symbol]
	d.mu.Unlock()

	if len(hist) < d.cfg.SentimentMinimum {
		return nil
	}

	current := hist[len(hist)-1].Score
	prev := hist[len(hist)-d.cfg.SentimentMinimum : len(hist)-1]
	var sum float64
	for _, p := range prev {
		sum += p.Score
	}
	baseline := sum / float64(len(prev))

	delta := current - baseline
	if math.Abs(delta) < d.cfg.SentimentDelta {
		return nil
	}

	severity := models.SeverityMedium
	if math.Abs(delta) > d.cfg.SentimentSevere {
		severity = models.SeverityHigh
	}
	direction := "bullish"
	if delta < 0 {
		direction = "bearish"
	}

	return &models.Anomaly{
		Symbol:    symbol,
		Type:      models.AnomalySentiment,
		Severity:  severity,
		Score:     math.Abs(delta),
		Direction: direction,
		Details:   map[string]float64{"delta": delta, "score": current, "baseline": baseline},
		Timestamp: time.Now().UTC(),
	}
}

// ScreenTransaction scores one large transfer for suspicion. Signals are
// additive and independent: off-hours timing, repeated sender activity
// inside the repeat window, and an opaque destination.
func (d *Detector) ScreenTransaction(_ context.Context, tx models.WhaleTransaction) (*models.Anomaly, error) {
	if tx.AmountUSD < d.cfg.WhaleMinUSD {
		return nil, nil
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}

	score := 0.0
	var reasons []string

	hour := tx.Timestamp.Hour()
	if hour >= d.cfg.OffHoursStart && hour <= d.cfg.OffHoursEnd {
		score += d.cfg.OffHoursWeight
		reasons = append(reasons, "off-hours transfer")
	}

	if d.recentSenderActivity(tx) >= d.cfg.RepeatCount {
		score += d.cfg.RepeatWeight
		reasons = append(reasons, "repeated transfers from same sender")
	}

	if mixerDestinations[tx.Destination] {
		score += d.cfg.DestinationWeight
		reasons = append(reasons, "opaque destination")
	}

	// Weights are decimal fractions; round to cents so sums like 0.3+0.4
	// compare exactly against the 0.7 severity boundary.
	score = math.Round(score*100) / 100

	if score < d.cfg.SuspicionFlag {
		return nil, nil
	}

	severity := models.SeverityMedium
	if score > d.cfg.SuspicionSevere {
		severity = models.SeverityHigh
	}

	return &models.Anomaly{
		Symbol:    tx.Symbol,
		Type:      models.AnomalyWhale,
		Severity:  severity,
		Score:     score,
		Reasons:   reasons,
		Details:   map[string]float64{"amount_usd": tx.AmountUSD},
		Timestamp: tx.Timestamp,
	}, nil
}

// recentSenderActivity counts prior transfers from the same sender within
// the repeat window and records the current one.
func (d *Detector) recentSenderActivity(tx models.WhaleTransaction) int {
	window := time.Duration(d.cfg.RepeatWindowSecs) * time.Second
	cutoff := tx.Timestamp.Add(-window)

	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.senders[tx.From][:0]
	for _, ts := range d.senders[tx.From] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	count := len(kept)
	d.senders[tx.From] = append(kept, tx.Timestamp)
	return count
}
