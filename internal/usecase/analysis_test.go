package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
	"CoinSentry/pkg/cache"
	"CoinSentry/pkg/logger"
)

type fakeBarProvider struct {
	bars  []models.Bar
	err   error
	calls int
}

func (f *fakeBarProvider) GetBars(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.Bar, error) {
	f.calls++
	return f.bars, f.err
}

func (f *fakeBarProvider) GetLatestNBars(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Bar, error) {
	f.calls++
	return f.bars, f.err
}

type fakeAnalyzer struct {
	result *models.TechnicalAnalysis
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, symbol string, bars []models.Bar) (*models.TechnicalAnalysis, error) {
	f.calls++
	return f.result, f.err
}

func testBars(n int) []models.Bar {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Bucket: t0.Add(time.Duration(i) * time.Minute),
			Symbol: "BTC",
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100,
			Volume: 1000,
		}
	}
	return bars
}

func TestAnalyzeCachesResult(t *testing.T) {
	provider := &fakeBarProvider{bars: testBars(30)}
	analyzer := &fakeAnalyzer{result: &models.TechnicalAnalysis{Symbol: "BTC", RSI: models.RSIResult{Value: 55}}}
	uc := NewAnalysisUseCase(provider, analyzer, cache.NewMemoryCache(), logger.Nop())

	params := AnalysisParams{Symbol: "BTC", N: 30}
	res, err := uc.Analyze(context.Background(), params)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Error != "" {
		t.Fatalf("Analyze() result error = %q", res.Error)
	}
	if res.Analysis == nil || res.Analysis.RSI.Value != 55 {
		t.Fatalf("Analyze() analysis = %+v", res.Analysis)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}

	// second call with identical params must come from the cache
	res2, err := uc.Analyze(context.Background(), params)
	if err != nil {
		t.Fatalf("Analyze() second call error = %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls after cached read = %d, want 1", provider.calls)
	}
	if res2.Analysis == nil || res2.Analysis.RSI.Value != 55 {
		t.Fatalf("cached analysis = %+v", res2.Analysis)
	}
}

func TestAnalyzeFreshBypassesCache(t *testing.T) {
	provider := &fakeBarProvider{bars: testBars(30)}
	analyzer := &fakeAnalyzer{result: &models.TechnicalAnalysis{Symbol: "BTC"}}
	uc := NewAnalysisUseCase(provider, analyzer, cache.NewMemoryCache(), logger.Nop())

	if _, err := uc.Analyze(context.Background(), AnalysisParams{Symbol: "BTC", N: 30}); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if _, err := uc.Analyze(context.Background(), AnalysisParams{Symbol: "BTC", N: 30, Fresh: true}); err != nil {
		t.Fatalf("Analyze() fresh error = %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", provider.calls)
	}
}

func TestAnalyzeDataUnavailable(t *testing.T) {
	cases := []struct {
		name     string
		provider *fakeBarProvider
	}{
		{"empty window", &fakeBarProvider{}},
		{"provider error", &fakeBarProvider{err: fmt.Errorf("upstream down")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{result: &models.TechnicalAnalysis{}}
			uc := NewAnalysisUseCase(tc.provider, analyzer, cache.NewMemoryCache(), logger.Nop())

			res, err := uc.Analyze(context.Background(), AnalysisParams{Symbol: "BTC"})
			if err != nil {
				t.Fatalf("Analyze() error = %v, want nil (degrade)", err)
			}
			if res.Error != models.ErrDataUnavailable.Error() {
				t.Fatalf("result error = %q, want %q", res.Error, models.ErrDataUnavailable.Error())
			}
			if res.Analysis != nil {
				t.Fatalf("result analysis = %+v, want nil", res.Analysis)
			}
			if analyzer.calls != 0 {
				t.Fatalf("analyzer calls = %d, want 0", analyzer.calls)
			}
		})
	}
}

func TestAnalyzeAnalyzerFailure(t *testing.T) {
	provider := &fakeBarProvider{bars: testBars(5)}
	analyzer := &fakeAnalyzer{err: models.ErrInsufficientHistory}
	uc := NewAnalysisUseCase(provider, analyzer, cache.NewMemoryCache(), logger.Nop())

	res, err := uc.Analyze(context.Background(), AnalysisParams{Symbol: "BTC", N: 5})
	if err != nil {
		t.Fatalf("Analyze() error = %v, want nil (degrade)", err)
	}
	if res.Error != models.ErrInsufficientHistory.Error() {
		t.Fatalf("result error = %q, want %q", res.Error, models.ErrInsufficientHistory.Error())
	}
}

func TestAnalyzeRequiresSymbol(t *testing.T) {
	uc := NewAnalysisUseCase(&fakeBarProvider{}, &fakeAnalyzer{}, nil, logger.Nop())
	if _, err := uc.Analyze(context.Background(), AnalysisParams{}); err == nil {
		t.Fatalf("Analyze() with empty symbol: expected error")
	}
}
