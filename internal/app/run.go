package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.Int64("chain-id", a.cfg.ChainID),
		zap.String("trading-contract", a.cfg.TradingContract),
		zap.String("log-level", a.cfg.LogLevel))

	a.warmPairsCache()

	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Mark as ready
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("rpc-url", a.cfg.RPCURL))

	// Wait for shutdown signal
	return a.waitForShutdown()
}

// warmPairsCache primes the pair mapping before traffic arrives. Failures
// are logged only; the cache refreshes lazily on first use.
func (a *App) warmPairsCache() {
	warmCtx, warmCancel := context.WithTimeout(a.ctx, a.cfg.HTTPCallTimeout)
	defer warmCancel()

	if _, err := a.resolver.PairIndex(warmCtx, "ETH/USD"); err != nil {
		a.logger.Warn("pairs-cache-warmup-failed", zap.Error(err))
	}
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
