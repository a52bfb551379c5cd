package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CoinSentry/internal/handler/api"
	"CoinSentry/internal/history"
	"CoinSentry/internal/usecase"
	pkgch "CoinSentry/pkg/clickhouse"
	"CoinSentry/pkg/config"
	xhttp "CoinSentry/pkg/http"
	pkgkafka "CoinSentry/pkg/kafka"
	applogger "CoinSentry/pkg/logger"
	pkgqueue "CoinSentry/pkg/queue"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	collector   *usecase.SampleCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	hist        *history.Store
	analysis    *usecase.AnalysisUseCase
	scan        *usecase.MarketScanUseCase
	bars        *usecase.BarsUseCase
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	SampleProc  *usecase.SampleProcessor
	ScanQueue   *pkgqueue.RedisQueue
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.SampleCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	hist *history.Store,
	analysis *usecase.AnalysisUseCase,
	scan *usecase.MarketScanUseCase,
	bars *usecase.BarsUseCase,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		hist:      hist,
		analysis:  analysis,
		scan:      scan,
		bars:      bars,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.log
	if l == nil {
		l = applogger.Nop()
	}

	// Setup Echo HTTP server using pkg/http and register routes via handler
	httpHandler := a.httpHandler
	if httpHandler == nil {
		httpHandler = api.NewAnalysisEchoHandler(l, a.analysis, a.scan, a.bars)
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	a.registerHealth()

	// Start collector
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("collector started", applogger.Strings("symbols", a.cfg.Stream.Symbols))
	}

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start scan queue if configured
	if a.ScanQueue != nil {
		if err := a.ScanQueue.Start(); err != nil {
			l.Warn("scan queue start error", applogger.Error(err))
		}
	}

	// Periodic history snapshots
	if a.hist != nil && a.cfg.History.SnapshotPath != "" {
		interval := a.cfg.History.SnapshotInterval
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go a.snapshotLoop(ctx, interval)
		l.Info("history snapshots enabled",
			applogger.String("path", a.cfg.History.SnapshotPath),
			applogger.Duration("interval", interval))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) registerHealth() {
	e := a.httpServer.Echo()
	e.GET("/healthz", func(c echo.Context) error {
		status := map[string]string{"status": "ok"}
		if a.chClient != nil {
			if err := a.chClient.DB().PingContext(c.Request().Context()); err != nil {
				status["status"] = "degraded"
				status["clickhouse"] = err.Error()
			}
		}
		if a.collector != nil && !a.collector.IsConnected() {
			status["stream"] = "disconnected"
		}
		code := http.StatusOK
		if status["status"] != "ok" {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, status)
	})
}

func (a *App) snapshotLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.hist.Save(a.cfg.History.SnapshotPath); err != nil {
				a.log.Warn("history snapshot save failed",
					applogger.String("path", a.cfg.History.SnapshotPath),
					applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.log
	if l == nil {
		l = applogger.Nop()
	}
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}

	// Final history snapshot
	if a.hist != nil && a.cfg.History.SnapshotPath != "" {
		if err := a.hist.Save(a.cfg.History.SnapshotPath); err != nil {
			l.Warn("final history snapshot failed", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Stop scan queue
	if a.ScanQueue != nil {
		if err := a.ScanQueue.Stop(ctx); err != nil {
			l.Warn("scan queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close sample processor resources (publisher/storage)
	if a.SampleProc != nil {
		a.SampleProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
