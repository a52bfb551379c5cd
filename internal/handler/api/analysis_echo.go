package api

import (
	"net/http"
	"time"

	models "CoinSentry/internal/domain/models"
	domrepo "CoinSentry/internal/domain/repository"
	"CoinSentry/internal/usecase"
	xhttp "CoinSentry/pkg/http"
	xlogger "CoinSentry/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analysis *usecase.AnalysisUseCase
	scan     *usecase.MarketScanUseCase
	bars     *usecase.BarsUseCase
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analysis *usecase.AnalysisUseCase, scan *usecase.MarketScanUseCase, bars *usecase.BarsUseCase) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{logger: logger, analysis: analysis, scan: scan, bars: bars}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analysis)
	g.GET("/risk", h.Risk)
	g.GET("/bars", h.Bars)
	g.POST("/anomalies/scan", h.ScanAnomalies)
	g.POST("/whales/scan", h.ScanWhales)
	g.POST("/sentiment", h.Sentiment)
}

func (h *AnalysisEchoHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	res, err := h.analysis.Analyze(c.Request().Context(), usecase.AnalysisParams{
		Symbol:    req.Symbol,
		N:         req.N,
		Timeframe: tf,
		Fresh:     req.Fresh,
	})
	if err != nil {
		h.logger.Error("analysis usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Risk(c echo.Context) error {
	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.scan.Risk(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("risk usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Bars(c echo.Context) error {
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	to := time.Now().UTC()
	if req.To > 0 {
		to = time.Unix(req.To, 0).UTC()
	}
	from := to.Add(-24 * time.Hour)
	if req.From > 0 {
		from = time.Unix(req.From, 0).UTC()
	}

	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) ScanAnomalies(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.scan.Scan(c.Request().Context(), req.Symbols)
	if err != nil {
		h.logger.Error("anomaly scan usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) ScanWhales(c echo.Context) error {
	req := &models.WhaleScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	txs := make([]models.WhaleTransaction, 0, len(req.Transactions))
	for _, p := range req.Transactions {
		tx := p.ToTransaction()
		if tx.AmountUSD < req.MinAmountUSD {
			continue
		}
		txs = append(txs, tx)
	}

	flagged, err := h.scan.ScreenTransactions(c.Request().Context(), txs)
	if err != nil {
		h.logger.Error("whale scan usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, flagged)
}

func (h *AnalysisEchoHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	anomalies, err := h.scan.RecordSentiment(c.Request().Context(), models.SentimentPoint{
		Symbol:    req.Symbol,
		Score:     req.Score,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("sentiment usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, anomalies)
}

// Ensure HTTP status is OK on DataResponse
func init() { _ = http.StatusOK }
