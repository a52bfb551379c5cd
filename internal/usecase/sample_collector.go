package usecase

import (
	"context"

	"CoinSentry/internal/domain/models"
	drepo "CoinSentry/internal/domain/repository"
	mid "CoinSentry/internal/middleware"
)

// SampleCollector collects samples from the market stream and processes them.
type SampleCollector struct {
	stream  drepo.MarketStream
	proc    *SampleProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewSampleCollector creates a new SampleCollector instance.
func NewSampleCollector(stream drepo.MarketStream, proc *SampleProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *SampleCollector {
	return &SampleCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the market stream is connected.
func (c *SampleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *SampleCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	sCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, sCh, errCh)
	return nil
}

func (c *SampleCollector) consume(ctx context.Context, sCh <-chan *models.Sample, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case s := <-sCh:
			if s == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, s)
			} else {
				_ = c.proc.Process(ctx, s)
			}
			c.metrics.RecordLastPrice(s.Symbol, s.Price)
		}
	}
}

func (c *SampleCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying SampleProcessor for lifecycle management.
func (c *SampleCollector) Processor() *SampleProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *SampleCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
