package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	"CoinSentry/internal/history"
)

type fakeSamplePublisher struct {
	mu      sync.Mutex
	singles []*models.Sample
	batches [][]*models.Sample
	err     error
}

func (f *fakeSamplePublisher) Publish(ctx context.Context, s *models.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.singles = append(f.singles, s)
	return nil
}

func (f *fakeSamplePublisher) PublishBatch(ctx context.Context, samples []*models.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, samples)
	return nil
}

func (f *fakeSamplePublisher) Close() error { return nil }

type fakeBarStorage struct {
	mu      sync.Mutex
	stored  []*models.Bar
	batches [][]*models.Bar
	err     error
}

func (f *fakeBarStorage) Init(ctx context.Context) error { return nil }

func (f *fakeBarStorage) Store(ctx context.Context, b *models.Bar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, b)
	return nil
}

func (f *fakeBarStorage) StoreBatch(ctx context.Context, bars []*models.Bar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, bars)
	return nil
}

func (f *fakeBarStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Bar, error) {
	return nil, nil
}

func (f *fakeBarStorage) Health(ctx context.Context) error { return nil }
func (f *fakeBarStorage) Close() error                     { return nil }

func sample(symbol string, price float64) *models.Sample {
	return &models.Sample{
		Symbol:    symbol,
		Price:     price,
		Volume:    500,
		Timestamp: time.Date(2026, 1, 1, 12, 30, 45, 0, time.UTC),
	}
}

func TestProcessNoneBackendOnlyAppendsHistory(t *testing.T) {
	pub := &fakeSamplePublisher{}
	store := &fakeBarStorage{}
	hist := history.NewStore(1440)
	p := NewSampleProcessor(pub, store, hist, &fakeMetrics{}, "none")

	if err := p.Process(context.Background(), sample("BTC", 100)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if hist.Len("BTC") != 1 {
		t.Fatalf("history len = %d, want 1", hist.Len("BTC"))
	}
	if len(pub.singles) != 0 || len(store.stored) != 0 {
		t.Fatalf("none backend touched publisher/storage")
	}
}

func TestProcessKafkaBackendPublishes(t *testing.T) {
	pub := &fakeSamplePublisher{}
	hist := history.NewStore(1440)
	metrics := &fakeMetrics{}
	p := NewSampleProcessor(pub, &fakeBarStorage{}, hist, metrics, "kafka")

	if err := p.Process(context.Background(), sample("ETH", 2500)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(pub.singles) != 1 {
		t.Fatalf("published = %d, want 1", len(pub.singles))
	}
	if metrics.sent != 1 {
		t.Fatalf("messages sent metric = %d, want 1", metrics.sent)
	}
}

func TestProcessClickhouseBackendStoresDegenerateBar(t *testing.T) {
	store := &fakeBarStorage{}
	hist := history.NewStore(1440)
	p := NewSampleProcessor(&fakeSamplePublisher{}, store, hist, &fakeMetrics{}, "clickhouse")

	s := sample("BTC", 42_000)
	if err := p.Process(context.Background(), s); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("stored = %d bars, want 1", len(store.stored))
	}
	b := store.stored[0]
	if b.Open != 42_000 || b.High != 42_000 || b.Low != 42_000 || b.Close != 42_000 {
		t.Fatalf("bar OHLC = %+v, want degenerate at 42000", b)
	}
	want := time.Date(2026, 1, 1, 12, 30, 0, 0, time.UTC)
	if !b.Bucket.Equal(want) {
		t.Fatalf("bar bucket = %v, want minute-truncated %v", b.Bucket, want)
	}
}

func TestProcessBackendFailureKeepsHistory(t *testing.T) {
	pub := &fakeSamplePublisher{err: fmt.Errorf("broker down")}
	hist := history.NewStore(1440)
	metrics := &fakeMetrics{}
	p := NewSampleProcessor(pub, &fakeBarStorage{}, hist, metrics, "kafka")

	if err := p.Process(context.Background(), sample("BTC", 100)); err == nil {
		t.Fatalf("Process() expected error on backend failure")
	}
	if hist.Len("BTC") != 1 {
		t.Fatalf("history len = %d, want 1 even when backend fails", hist.Len("BTC"))
	}
	if metrics.errors["process"] != 1 {
		t.Fatalf("process errors = %d, want 1", metrics.errors["process"])
	}
}

func TestProcessUnknownBackend(t *testing.T) {
	p := NewSampleProcessor(&fakeSamplePublisher{}, &fakeBarStorage{}, history.NewStore(10), &fakeMetrics{}, "postgres")
	if err := p.Process(context.Background(), sample("BTC", 100)); err == nil {
		t.Fatalf("Process() expected error for unknown backend")
	}
}

func TestProcessNilSample(t *testing.T) {
	p := NewSampleProcessor(&fakeSamplePublisher{}, &fakeBarStorage{}, history.NewStore(10), &fakeMetrics{}, "none")
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatalf("Process(nil) expected error")
	}
}

func TestProcessBatch(t *testing.T) {
	pub := &fakeSamplePublisher{}
	hist := history.NewStore(1440)
	p := NewSampleProcessor(pub, &fakeBarStorage{}, hist, &fakeMetrics{}, "kafka")

	samples := []*models.Sample{sample("BTC", 100), sample("BTC", 101), sample("ETH", 2500)}
	if err := p.ProcessBatch(context.Background(), samples); err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if hist.Len("BTC") != 2 || hist.Len("ETH") != 1 {
		t.Fatalf("history lens = %d/%d, want 2/1", hist.Len("BTC"), hist.Len("ETH"))
	}
	if len(pub.batches) != 1 || len(pub.batches[0]) != 3 {
		t.Fatalf("batches = %+v, want one batch of 3", pub.batches)
	}
}
