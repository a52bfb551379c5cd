package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/domain/repository"
	"CoinSentry/internal/services/anomaly"
	pkgkafka "CoinSentry/pkg/kafka"
)

// ClickHouseBarStorage implements BarStorage for ClickHouse.
type ClickHouseBarStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseBarStorage creates ClickHouse bar storage.
func NewClickHouseBarStorage(db *sql.DB, table string) repository.BarStorage {
	return &ClickHouseBarStorage{db: db, table: table}
}

func (s *ClickHouseBarStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseBarStorage) Store(ctx context.Context, b *models.Bar) error {
	q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, open, high, low, close, vol, event_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	// Idempotency: event_id derived from symbol+bucket so replays dedupe.
	eventID := fmt.Sprintf("%s-%d", b.Symbol, b.Bucket.Unix())
	_, err := s.db.ExecContext(ctx, q,
		b.Bucket,
		b.Symbol,
		b.Open,
		b.High,
		b.Low,
		b.Close,
		b.Volume,
		eventID,
	)
	return err
}

func (s *ClickHouseBarStorage) StoreBatch(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, b := range bars[start:end] {
			if b == nil || b.Symbol == "" || b.Bucket.IsZero() {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", b.Symbol, b.Bucket.Unix())
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				b.Bucket,
				b.Symbol,
				b.Open,
				b.High,
				b.Low,
				b.Close,
				b.Volume,
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, open, high, low, close, vol, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseBarStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Bar, error) {
	q := fmt.Sprintf("SELECT bucket, symbol, open, high, low, close, vol FROM %s WHERE symbol = ? AND bucket >= ? AND bucket <= ? ORDER BY bucket DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []*models.Bar
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Bucket, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, &b)
	}
	return bars, rows.Err()
}

func (s *ClickHouseBarStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseBarStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaSamplePublisher implements SamplePublisher for Kafka.
type KafkaSamplePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSamplePublisher creates a Kafka publisher for raw market samples.
func NewKafkaSamplePublisher(producer *pkgkafka.Producer, topic string) repository.SamplePublisher {
	return &KafkaSamplePublisher{producer: producer, topic: topic}
}

func (p *KafkaSamplePublisher) Publish(ctx context.Context, s *models.Sample) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Symbol), samplePayload(s))
}

func (p *KafkaSamplePublisher) PublishBatch(ctx context.Context, samples []*models.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(samples))
	for i, s := range samples {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(s.Symbol),
			Value: samplePayload(s),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSamplePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func samplePayload(s *models.Sample) map[string]interface{} {
	return map[string]interface{}{
		"symbol": s.Symbol,
		"t":      s.Timestamp.Unix(),
		"p":      s.Price,
		"v":      s.Volume,
	}
}

// KafkaAlertPublisher implements AlertPublisher for Kafka.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates a Kafka publisher for anomaly alerts.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, a *models.Anomaly) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Symbol), alertPayload(a))
}

func (p *KafkaAlertPublisher) PublishBatch(ctx context.Context, anomalies []*models.Anomaly) error {
	if len(anomalies) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(anomalies))
	for i, a := range anomalies {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(a.Symbol),
			Value: alertPayload(a),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func alertPayload(a *models.Anomaly) map[string]interface{} {
	return map[string]interface{}{
		"symbol":    a.Symbol,
		"type":      a.Type,
		"severity":  a.Severity,
		"score":     a.Score,
		"direction": a.Direction,
		"pattern":   a.Pattern,
		"reasons":   a.Reasons,
		"details":   a.Details,
		"message":   anomaly.RenderAlert(a),
		"ts":        a.Timestamp.Unix(),
	}
}
