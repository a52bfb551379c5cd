package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
)

type fakeProc struct {
	mu      sync.Mutex
	samples []*models.Sample
	err     error
}

func (f *fakeProc) Process(ctx context.Context, s *models.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.samples = append(f.samples, s)
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (f *fakeMetrics) RecordMessageSent(backend, symbol string)     {}
func (f *fakeMetrics) RecordLastPrice(symbol string, price float64) {}
func (f *fakeMetrics) RecordLatency(op string, seconds float64)     {}
func (f *fakeMetrics) RecordAnomaly(symbol, kind, severity string)  {}

func (f *fakeMetrics) RecordError(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errors == nil {
		f.errors = map[string]int{}
	}
	f.errors[kind]++
}

func (f *fakeMetrics) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors[kind]
}

func TestProcessRejectsMalformedSamples(t *testing.T) {
	cases := []struct {
		name   string
		sample *models.Sample
	}{
		{"nil sample", nil},
		{"empty symbol", &models.Sample{Price: 100}},
		{"zero price", &models.Sample{Symbol: "BTC", Price: 0}},
		{"negative price", &models.Sample{Symbol: "BTC", Price: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proc := &fakeProc{}
			p := NewRealtimePipeline(proc, &fakeMetrics{})
			err := p.Process(context.Background(), tc.sample)
			if !errors.Is(err, models.ErrMalformedSample) {
				t.Fatalf("Process() error = %v, want ErrMalformedSample", err)
			}
			if len(proc.samples) != 0 {
				t.Fatalf("malformed sample reached downstream")
			}
		})
	}
}

func TestProcessRepairsRecoverableGaps(t *testing.T) {
	proc := &fakeProc{}
	p := NewRealtimePipeline(proc, &fakeMetrics{})

	s := &models.Sample{Symbol: "BTC", Price: 100, Volume: -5}
	if err := p.Process(context.Background(), s); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if s.Volume != 0 {
		t.Fatalf("volume = %v, want repaired to 0", s.Volume)
	}
	if s.Timestamp.IsZero() {
		t.Fatalf("timestamp not substituted")
	}
	if len(proc.samples) != 1 {
		t.Fatalf("downstream samples = %d, want 1", len(proc.samples))
	}
}

func TestProcessThrottlesPerSymbol(t *testing.T) {
	proc := &fakeProc{}
	metrics := &fakeMetrics{}
	p := NewRealtimePipeline(proc, metrics, WithMaxRPS(1))

	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		s := &models.Sample{Symbol: "BTC", Price: 100, Volume: 1, Timestamp: ts}
		if err := p.Process(context.Background(), s); err != nil {
			t.Fatalf("Process() call %d error = %v", i, err)
		}
	}
	if len(proc.samples) != 1 {
		t.Fatalf("downstream samples = %d, want 1 (throttled)", len(proc.samples))
	}
	if metrics.count("pipeline_throttle") != 2 {
		t.Fatalf("throttle count = %d, want 2", metrics.count("pipeline_throttle"))
	}

	// a different symbol has its own budget
	s := &models.Sample{Symbol: "ETH", Price: 2500, Volume: 1, Timestamp: ts}
	if err := p.Process(context.Background(), s); err != nil {
		t.Fatalf("Process() other symbol error = %v", err)
	}
	if len(proc.samples) != 2 {
		t.Fatalf("downstream samples = %d, want 2", len(proc.samples))
	}
}

func TestProcessBuffersOnDownstreamFailure(t *testing.T) {
	proc := &fakeProc{err: fmt.Errorf("backend down")}
	metrics := &fakeMetrics{}
	p := NewRealtimePipeline(proc, metrics, WithBufferSize(4))

	s := &models.Sample{Symbol: "BTC", Price: 100, Volume: 1, Timestamp: time.Now().UTC()}
	if err := p.Process(context.Background(), s); err == nil {
		t.Fatalf("Process() expected error on downstream failure")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("buffer depth = %d, want 1", len(p.bufCh))
	}
	if metrics.count("pipeline_process") != 1 {
		t.Fatalf("process errors = %d, want 1", metrics.count("pipeline_process"))
	}
}

func TestStartFlushesBufferedSamples(t *testing.T) {
	proc := &fakeProc{err: fmt.Errorf("backend down")}
	p := NewRealtimePipeline(proc, &fakeMetrics{}, WithBufferSize(4))

	s := &models.Sample{Symbol: "BTC", Price: 100, Volume: 1, Timestamp: time.Now().UTC()}
	_ = p.Process(context.Background(), s)

	// downstream recovers before the flusher starts
	proc.mu.Lock()
	proc.err = nil
	proc.mu.Unlock()

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		proc.mu.Lock()
		n := len(proc.samples)
		proc.mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("buffered sample was never flushed")
}
