package usecase

import (
	"context"
	"encoding/json"
	"time"

	"CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/history"
	pkgkafka "CoinSentry/pkg/kafka"
)

// KafkaSamplesHandler consumes sample messages and feeds the rolling history
// plus the bar archive.
type KafkaSamplesHandler struct {
	topic   string
	hist    *history.Store
	storage domrepo.BarStorage
	metrics domrepo.Metrics
}

func NewKafkaSamplesHandler(topic string, hist *history.Store, storage domrepo.BarStorage, metrics domrepo.Metrics) *KafkaSamplesHandler {
	return &KafkaSamplesHandler{topic: topic, hist: hist, storage: storage, metrics: metrics}
}

func (h *KafkaSamplesHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, p, v}
func (h *KafkaSamplesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		P      float64 `json:"p"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	ts := time.Unix(m.T, 0).UTC()
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	sample := models.Sample{Symbol: m.Symbol, Price: m.P, Volume: m.V, Timestamp: ts}
	h.hist.Append(sample)

	if h.storage == nil {
		return nil
	}
	start := time.Now()
	err := h.storage.Store(ctx, sampleToBar(&sample))
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSamplesHandler)(nil)
