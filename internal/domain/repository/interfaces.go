package repository

import (
	"context"
	"time"

	"CoinSentry/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Sample, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type SamplePublisher interface {
	Publish(ctx context.Context, s *models.Sample) error
	PublishBatch(ctx context.Context, samples []*models.Sample) error
	Close() error
}

type AlertPublisher interface {
	Publish(ctx context.Context, a *models.Anomaly) error
	PublishBatch(ctx context.Context, anomalies []*models.Anomaly) error
	Close() error
}

type BarStorage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, b *models.Bar) error
	StoreBatch(ctx context.Context, bars []*models.Bar) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Bar, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordAnomaly(symbol, kind, severity string)
}
