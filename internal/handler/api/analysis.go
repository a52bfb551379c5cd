package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	domrepo "CoinSentry/internal/domain/repository"
	icache "CoinSentry/internal/service/cache"
	"CoinSentry/internal/service/metrics"
	"CoinSentry/internal/service/ratelimit"
	"CoinSentry/internal/services/technical"
	"CoinSentry/internal/usecase"
	applogger "CoinSentry/pkg/logger"
)

// AnalysisHandler exposes the analysis and risk endpoints over plain
// net/http, with per-remote throttling and a byte-level response cache.
type AnalysisHandler struct {
	analysis *usecase.AnalysisUseCase
	scan     *usecase.MarketScanUseCase
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
	l        *applogger.Logger
}

func NewAnalysisHandler(analysis *usecase.AnalysisUseCase, scan *usecase.MarketScanUseCase) *AnalysisHandler {
	metrics.Register()
	return &AnalysisHandler{analysis: analysis, scan: scan, rl: ratelimit.New()}
}

func (h *AnalysisHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *AnalysisHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *AnalysisHandler) Analysis() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "analysis"
		defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("analysis missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		n := parseInt(r.URL.Query().Get("n"), 240)
		tf := domrepo.NormalizeTimeframe(r.URL.Query().Get("tf"))
		asText := r.URL.Query().Get("format") == "text"
		if !h.rl.Allow(r.RemoteAddr+":analysis", 5, 2) {
			if h.l != nil {
				h.l.Warn("analysis rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "analysis:" + symbol + ":" + string(tf) + ":" + strconv.Itoa(n)
		if h.cache != nil && !asText {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("analysis cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("analysis cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("analysis write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("analysis cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.analysis.Analyze(r.Context(), usecase.AnalysisParams{Symbol: symbol, N: n, Timeframe: tf})
		if err != nil {
			metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("analysis error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if asText {
			if res.Analysis == nil {
				http.Error(w, res.Error, http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			if _, err := w.Write([]byte(technical.RenderReport(res.Analysis))); err != nil && h.l != nil {
				h.l.Warn("analysis write_error", applogger.Error(err))
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("analysis marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("analysis cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("analysis write_error", applogger.Error(err))
		}
	}
}

func (h *AnalysisHandler) Risk() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "risk"
		defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("risk missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		if !h.rl.Allow(r.RemoteAddr+":risk", 5, 2) {
			if h.l != nil {
				h.l.Warn("risk rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "risk:" + symbol
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("risk cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("risk cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("risk write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("risk cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.scan.Risk(r.Context(), symbol)
		if err != nil {
			metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("risk error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("risk marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil && h.l != nil {
				h.l.Warn("risk cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("risk write_error", applogger.Error(err))
		}
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
