package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/pkg/logger"
)

type fakeDetector struct {
	mu         sync.Mutex
	anomalies  map[string][]models.Anomaly
	scanErr    map[string]error
	risks      map[string]models.RiskAssessment
	screened   []models.Anomaly
	sentiments []models.SentimentPoint
}

func (f *fakeDetector) Scan(ctx context.Context, symbol string) ([]models.Anomaly, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.scanErr[symbol]; err != nil {
		return nil, err
	}
	return f.anomalies[symbol], nil
}

func (f *fakeDetector) ScreenTransaction(ctx context.Context, tx models.WhaleTransaction) (*models.Anomaly, error) {
	if tx.AmountUSD >= 1_000_000 {
		a := models.Anomaly{Symbol: tx.Symbol, Type: models.AnomalyWhale, Severity: models.SeverityMedium}
		return &a, nil
	}
	return nil, nil
}

func (f *fakeDetector) RecordSentiment(p models.SentimentPoint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentiments = append(f.sentiments, p)
}

func (f *fakeDetector) AssessRisk(ctx context.Context, symbol string) (models.RiskAssessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.risks[symbol], nil
}

type fakeAlerts struct {
	mu        sync.Mutex
	published []models.Anomaly
	err       error
}

func (f *fakeAlerts) Publish(ctx context.Context, a *models.Anomaly) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, *a)
	return nil
}

func (f *fakeAlerts) PublishBatch(ctx context.Context, anomalies []*models.Anomaly) error {
	for _, a := range anomalies {
		if err := f.Publish(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAlerts) Close() error { return nil }

type fakeMetrics struct {
	mu        sync.Mutex
	sent      int
	errors    map[string]int
	anomalies int
}

func (f *fakeMetrics) RecordMessageSent(backend, symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
}

func (f *fakeMetrics) RecordError(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errors == nil {
		f.errors = map[string]int{}
	}
	f.errors[kind]++
}

func (f *fakeMetrics) RecordLastPrice(symbol string, price float64) {}
func (f *fakeMetrics) RecordLatency(op string, seconds float64)     {}

func (f *fakeMetrics) RecordAnomaly(symbol, kind, severity string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.anomalies++
}

func TestScanAggregatesAndPublishes(t *testing.T) {
	det := &fakeDetector{
		anomalies: map[string][]models.Anomaly{
			"BTC": {{Symbol: "BTC", Type: models.AnomalyPrice, Severity: models.SeverityHigh}},
			"ETH": nil,
		},
		scanErr: map[string]error{"DOGE": fmt.Errorf("no history")},
		risks: map[string]models.RiskAssessment{
			"BTC": {Symbol: "BTC", Score: 0.8, Level: models.RiskHigh},
			"ETH": {Symbol: "ETH", Score: 0.1, Level: models.RiskLow},
		},
	}
	alerts := &fakeAlerts{}
	metrics := &fakeMetrics{}
	uc := NewMarketScanUseCase(det, alerts, metrics, logger.Nop())

	res, err := uc.Scan(context.Background(), []string{"BTC", "ETH", "DOGE"})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Anomalies) != 1 || res.Anomalies[0].Type != models.AnomalyPrice {
		t.Fatalf("anomalies = %+v, want one price anomaly", res.Anomalies)
	}
	if len(res.Risks) != 2 {
		t.Fatalf("risks = %+v, want BTC and ETH", res.Risks)
	}
	if res.Risks["BTC"].Level != models.RiskHigh {
		t.Fatalf("BTC risk level = %q, want high", res.Risks["BTC"].Level)
	}
	if res.Errors["DOGE"] != "no history" {
		t.Fatalf("errors = %+v, want DOGE entry", res.Errors)
	}
	if len(alerts.published) != 1 {
		t.Fatalf("published = %d alerts, want 1", len(alerts.published))
	}
	if metrics.anomalies != 1 {
		t.Fatalf("recorded anomalies = %d, want 1", metrics.anomalies)
	}
}

func TestScanPublishFailureIsCounted(t *testing.T) {
	det := &fakeDetector{
		anomalies: map[string][]models.Anomaly{
			"BTC": {{Symbol: "BTC", Type: models.AnomalyVolume, Severity: models.SeverityMedium}},
		},
		risks: map[string]models.RiskAssessment{"BTC": {Symbol: "BTC"}},
	}
	alerts := &fakeAlerts{err: fmt.Errorf("broker down")}
	metrics := &fakeMetrics{}
	uc := NewMarketScanUseCase(det, alerts, metrics, logger.Nop())

	res, err := uc.Scan(context.Background(), []string{"BTC"})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(res.Anomalies) != 1 {
		t.Fatalf("anomalies = %d, want 1 despite publish failure", len(res.Anomalies))
	}
	if metrics.errors["alert_publish"] != 1 {
		t.Fatalf("alert_publish errors = %d, want 1", metrics.errors["alert_publish"])
	}
}

func TestScreenTransactionsPublishesFlaggedOnly(t *testing.T) {
	det := &fakeDetector{}
	alerts := &fakeAlerts{}
	uc := NewMarketScanUseCase(det, alerts, &fakeMetrics{}, logger.Nop())

	now := time.Now().UTC()
	txs := []models.WhaleTransaction{
		{Hash: "0xaa", Symbol: "BTC", AmountUSD: 5_000_000, Timestamp: now},
		{Hash: "0xbb", Symbol: "BTC", AmountUSD: 500, Timestamp: now},
	}
	flagged, err := uc.ScreenTransactions(context.Background(), txs)
	if err != nil {
		t.Fatalf("ScreenTransactions() error = %v", err)
	}
	if len(flagged) != 1 {
		t.Fatalf("flagged = %d, want 1", len(flagged))
	}
	if len(alerts.published) != 1 || alerts.published[0].Type != models.AnomalyWhale {
		t.Fatalf("published = %+v, want one whale alert", alerts.published)
	}
}

func TestRecordSentimentFiltersToSentimentAnomalies(t *testing.T) {
	det := &fakeDetector{
		anomalies: map[string][]models.Anomaly{
			"BTC": {
				{Symbol: "BTC", Type: models.AnomalyPrice, Severity: models.SeverityMedium},
				{Symbol: "BTC", Type: models.AnomalySentiment, Severity: models.SeverityHigh},
			},
		},
	}
	alerts := &fakeAlerts{}
	uc := NewMarketScanUseCase(det, alerts, &fakeMetrics{}, logger.Nop())

	p := models.SentimentPoint{Symbol: "BTC", Score: -0.9, Timestamp: time.Now().UTC()}
	out, err := uc.RecordSentiment(context.Background(), p)
	if err != nil {
		t.Fatalf("RecordSentiment() error = %v", err)
	}
	if len(det.sentiments) != 1 || det.sentiments[0].Score != -0.9 {
		t.Fatalf("recorded sentiments = %+v", det.sentiments)
	}
	if len(out) != 1 || out[0].Type != models.AnomalySentiment {
		t.Fatalf("returned anomalies = %+v, want sentiment only", out)
	}
	if len(alerts.published) != 1 || alerts.published[0].Type != models.AnomalySentiment {
		t.Fatalf("published = %+v, want sentiment alert only", alerts.published)
	}
}

func TestRiskDelegatesToDetector(t *testing.T) {
	det := &fakeDetector{
		risks: map[string]models.RiskAssessment{
			"ETH": {Symbol: "ETH", Score: 0.45, Level: models.RiskMedium},
		},
	}
	uc := NewMarketScanUseCase(det, &fakeAlerts{}, &fakeMetrics{}, logger.Nop())

	risk, err := uc.Risk(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("Risk() error = %v", err)
	}
	if risk.Level != models.RiskMedium || risk.Score != 0.45 {
		t.Fatalf("risk = %+v", risk)
	}
}
