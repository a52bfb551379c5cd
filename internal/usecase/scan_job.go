package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"CoinSentry/pkg/logger"
	"CoinSentry/pkg/queue"
)

// ScanJobType is the queue message type that triggers a market sweep.
const ScanJobType = "market_scan"

// ScanJob consumes queued scan requests, letting external schedulers
// trigger anomaly sweeps without going through HTTP.
type ScanJob struct {
	scan *MarketScanUseCase
	log  *logger.Logger
}

func NewScanJob(scan *MarketScanUseCase, log *logger.Logger) *ScanJob {
	return &ScanJob{scan: scan, log: log}
}

func (j *ScanJob) Name() string { return "market-scan" }
func (j *ScanJob) Type() string { return ScanJobType }

type scanJobPayload struct {
	Symbols []string `json:"symbols"`
}

func (j *ScanJob) Handle(ctx context.Context, payload interface{}) error {
	raw, ok := payload.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("scan job payload: %w", err)
		}
		raw = b
	}

	var p scanJobPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("scan job payload: %w", err)
	}
	if len(p.Symbols) == 0 {
		return fmt.Errorf("scan job: no symbols")
	}

	res, err := j.scan.Scan(ctx, p.Symbols)
	if err != nil {
		return err
	}
	j.log.Info("queued market scan done",
		logger.Int("symbols", len(p.Symbols)),
		logger.Int("anomalies", len(res.Anomalies)))
	return nil
}

var _ queue.Job = (*ScanJob)(nil)
