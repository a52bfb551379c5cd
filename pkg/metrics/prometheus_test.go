package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"CoinSentry/internal/domain/repository"
)

var _ repository.Metrics = (*Recorder)(nil)

func TestRecorderCountsAnomalies(t *testing.T) {
	r := New()

	r.RecordAnomaly("BTC", "price_anomaly", "high")
	r.RecordAnomaly("BTC", "price_anomaly", "high")
	r.RecordAnomaly("ETH", "volume_anomaly", "medium")

	if got := testutil.ToFloat64(r.anomalies.WithLabelValues("BTC", "price_anomaly", "high")); got != 2 {
		t.Fatalf("BTC high price anomalies = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.anomalies.WithLabelValues("ETH", "volume_anomaly", "medium")); got != 1 {
		t.Fatalf("ETH medium volume anomalies = %v, want 1", got)
	}
}
