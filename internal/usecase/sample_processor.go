package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSentry/internal/domain/models"
	drepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/history"
)

// SampleProcessor folds samples into the rolling history and forwards them
// to the configured archival backend.
type SampleProcessor struct {
	pub     drepo.SamplePublisher
	store   drepo.BarStorage
	hist    *history.Store
	metrics drepo.Metrics
	backend string
}

// NewSampleProcessor creates a new SampleProcessor instance.
func NewSampleProcessor(
	pub drepo.SamplePublisher,
	store drepo.BarStorage,
	hist *history.Store,
	metrics drepo.Metrics,
	backend string,
) *SampleProcessor {
	return &SampleProcessor{
		pub:     pub,
		store:   store,
		hist:    hist,
		metrics: metrics,
		backend: backend,
	}
}

// Process appends one sample to history and routes it to the backend. The
// history append always happens; a backend failure never loses the sample
// for analysis purposes.
func (p *SampleProcessor) Process(ctx context.Context, s *models.Sample) error {
	if s == nil {
		return fmt.Errorf("sample is nil")
	}

	p.hist.Append(*s)

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, s)
	case "clickhouse":
		err = p.store.Store(ctx, sampleToBar(s))
	case "none":
		// history only
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process sample: %w", err)
	}

	p.metrics.RecordMessageSent(p.backend, s.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch processes multiple samples in a batch.
func (p *SampleProcessor) ProcessBatch(ctx context.Context, samples []*models.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	for _, s := range samples {
		p.hist.Append(*s)
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, samples)
	case "clickhouse":
		bars := make([]*models.Bar, len(samples))
		for i, s := range samples {
			bars[i] = sampleToBar(s)
		}
		err = p.store.StoreBatch(ctx, bars)
	case "none":
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, s := range samples {
		p.metrics.RecordMessageSent(p.backend, s.Symbol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *SampleProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

// sampleToBar collapses a point sample into a degenerate one-minute bar.
func sampleToBar(s *models.Sample) *models.Bar {
	return &models.Bar{
		Bucket: s.Timestamp.Truncate(time.Minute),
		Symbol: s.Symbol,
		Open:   s.Price,
		High:   s.Price,
		Low:    s.Price,
		Close:  s.Price,
		Volume: s.Volume,
	}
}
