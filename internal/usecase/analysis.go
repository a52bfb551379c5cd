package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
	domsvc "CoinSentry/internal/domain/service"
	"CoinSentry/pkg/cache"
	"CoinSentry/pkg/logger"
)

// DefaultAnalysisTTL keeps indicator bundles warm for fifteen minutes.
const DefaultAnalysisTTL = 900 * time.Second

// AnalysisUseCase orchestrates one per-instrument technical analysis:
// read a bar window, run the analyzer, cache the bundle.
type AnalysisUseCase struct {
	provider domrepo.BarProvider
	analyzer domsvc.TechnicalAnalyzer
	cache    cache.Service
	log      *logger.Logger
	ttl      time.Duration
}

func NewAnalysisUseCase(provider domrepo.BarProvider, analyzer domsvc.TechnicalAnalyzer, c cache.Service, log *logger.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{
		provider: provider,
		analyzer: analyzer,
		cache:    c,
		log:      log,
		ttl:      DefaultAnalysisTTL,
	}
}

type AnalysisParams struct {
	Symbol    string
	N         int
	Timeframe domrepo.Timeframe
	Fresh     bool // bypass the cache
}

// AnalysisResult always carries either a payload or a plain-language error,
// never both empty.
type AnalysisResult struct {
	Symbol   string
	Analysis *models.TechnicalAnalysis
	Error    string
}

func (uc *AnalysisUseCase) Analyze(ctx context.Context, p AnalysisParams) (*AnalysisResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.N <= 0 {
		p.N = 240
	}
	if p.Timeframe == "" {
		p.Timeframe = domrepo.DefaultTimeframe()
	}

	key := cache.GenerateKeyWithParams("analysis", p.Symbol, string(p.Timeframe), p.N)
	if uc.cache != nil && !p.Fresh {
		var cached AnalysisResult
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			uc.log.Warn("analysis cache read failed", logger.Error(err))
		}
	}

	bars, err := uc.provider.GetLatestNBars(ctx, p.Symbol, p.N, p.Timeframe)
	if err != nil || len(bars) == 0 {
		if err != nil {
			uc.log.Warn("bar fetch failed",
				logger.String("symbol", p.Symbol),
				logger.Error(err))
		}
		return &AnalysisResult{Symbol: p.Symbol, Error: models.ErrDataUnavailable.Error()}, nil
	}

	ta, err := uc.analyzer.Analyze(ctx, p.Symbol, bars)
	if err != nil {
		return &AnalysisResult{Symbol: p.Symbol, Error: err.Error()}, nil
	}

	res := &AnalysisResult{Symbol: p.Symbol, Analysis: ta}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, res, uc.ttl); err != nil {
			uc.log.Warn("analysis cache write failed", logger.Error(err))
		}
	}
	return res, nil
}
