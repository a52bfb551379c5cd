package usecase

import (
	"context"
	"sync"
	"time"

	"CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
	domsvc "CoinSentry/internal/domain/service"
	"CoinSentry/pkg/logger"
)

// MarketScanUseCase runs the anomaly detector across instruments, publishes
// flagged events to the alert sink and assembles per-symbol risk verdicts.
type MarketScanUseCase struct {
	detector domsvc.AnomalyDetector
	alerts   domrepo.AlertPublisher
	metrics  domrepo.Metrics
	log      *logger.Logger
	timeout  time.Duration
}

func NewMarketScanUseCase(detector domsvc.AnomalyDetector, alerts domrepo.AlertPublisher, metrics domrepo.Metrics, log *logger.Logger) *MarketScanUseCase {
	return &MarketScanUseCase{
		detector: detector,
		alerts:   alerts,
		metrics:  metrics,
		log:      log,
		timeout:  10 * time.Second,
	}
}

// ScanResult is the aggregate outcome over all scanned instruments.
type ScanResult struct {
	Timestamp time.Time
	Anomalies []models.Anomaly
	Risks     map[string]models.RiskAssessment
	Errors    map[string]string
}

// Scan analyzes each symbol concurrently. Per-instrument buffers are
// independent, so the fan-out never touches shared state.
func (uc *MarketScanUseCase) Scan(ctx context.Context, symbols []string) (*ScanResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &ScanResult{
		Timestamp: time.Now().UTC(),
		Risks:     make(map[string]models.RiskAssessment, len(symbols)),
		Errors:    map[string]string{},
	}

	type item struct {
		symbol    string
		anomalies []models.Anomaly
		risk      models.RiskAssessment
		err       error
	}
	ch := make(chan item, len(symbols))
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			anomalies, err := uc.detector.Scan(ctx, symbol)
			if err != nil {
				ch <- item{symbol: symbol, err: err}
				return
			}
			risk, err := uc.detector.AssessRisk(ctx, symbol)
			ch <- item{symbol: symbol, anomalies: anomalies, risk: risk, err: err}
		}(symbol)
	}
	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.symbol] = it.err.Error()
			continue
		}
		res.Anomalies = append(res.Anomalies, it.anomalies...)
		res.Risks[it.symbol] = it.risk
	}

	uc.publish(ctx, res.Anomalies)

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

// Risk assesses a single instrument without publishing anything.
func (uc *MarketScanUseCase) Risk(ctx context.Context, symbol string) (models.RiskAssessment, error) {
	return uc.detector.AssessRisk(ctx, symbol)
}

// ScreenTransactions runs whale screening over a batch of transfers and
// publishes every flagged one.
func (uc *MarketScanUseCase) ScreenTransactions(ctx context.Context, txs []models.WhaleTransaction) ([]models.Anomaly, error) {
	var flagged []models.Anomaly
	for _, tx := range txs {
		a, err := uc.detector.ScreenTransaction(ctx, tx)
		if err != nil {
			uc.log.Warn("whale screening failed",
				logger.String("hash", tx.Hash),
				logger.Error(err))
			continue
		}
		if a != nil {
			flagged = append(flagged, *a)
		}
	}

	uc.publish(ctx, flagged)
	return flagged, nil
}

// RecordSentiment forwards a sentiment reading and immediately rescans the
// instrument so a sharp shift is alerted without waiting for the next sweep.
func (uc *MarketScanUseCase) RecordSentiment(ctx context.Context, p models.SentimentPoint) ([]models.Anomaly, error) {
	uc.detector.RecordSentiment(p)
	anomalies, err := uc.detector.Scan(ctx, p.Symbol)
	if err != nil {
		return nil, err
	}

	var sentiment []models.Anomaly
	for _, a := range anomalies {
		if a.Type == models.AnomalySentiment {
			sentiment = append(sentiment, a)
		}
	}
	uc.publish(ctx, sentiment)
	return sentiment, nil
}

func (uc *MarketScanUseCase) publish(ctx context.Context, anomalies []models.Anomaly) {
	for i := range anomalies {
		a := anomalies[i]
		if uc.metrics != nil {
			uc.metrics.RecordAnomaly(a.Symbol, a.Type, a.Severity)
		}
		if uc.alerts == nil {
			continue
		}
		if err := uc.alerts.Publish(ctx, &a); err != nil {
			if uc.metrics != nil {
				uc.metrics.RecordError("alert_publish")
			}
			uc.log.Error("alert publish failed",
				logger.String("symbol", a.Symbol),
				logger.String("type", a.Type),
				logger.Error(err))
		}
	}
}
