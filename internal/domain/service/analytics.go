package service

import (
	"context"

	"CoinSentry/internal/domain/models"
)

// TechnicalAnalyzer computes the full indicator bundle for one instrument.
type TechnicalAnalyzer interface {
	Analyze(ctx context.Context, symbol string, bars []models.Bar) (*models.TechnicalAnalysis, error)
}

// AnomalyDetector flags irregular market behavior from buffered history.
type AnomalyDetector interface {
	Scan(ctx context.Context, symbol string) ([]models.Anomaly, error)
	ScreenTransaction(ctx context.Context, tx models.WhaleTransaction) (*models.Anomaly, error)
	RecordSentiment(p models.SentimentPoint)
	AssessRisk(ctx context.Context, symbol string) (models.RiskAssessment, error)
}
