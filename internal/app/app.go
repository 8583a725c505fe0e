// Package app wires the service together: chain client, market-data
// resolver, remote signer, trader registry, and the HTTP surface.
package app

import (
	"context"
	"sync"

	"github.com/swipetrade/perps-service/internal/chain"
	"github.com/swipetrade/perps-service/internal/markets"
	"github.com/swipetrade/perps-service/internal/trading"
	"github.com/swipetrade/perps-service/pkg/cache"
	"github.com/swipetrade/perps-service/pkg/config"
	"github.com/swipetrade/perps-service/pkg/healthprobe"
	"github.com/swipetrade/perps-service/pkg/httpserver"
	"github.com/swipetrade/perps-service/pkg/signer"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	chainClient   *chain.Client
	resolver      *markets.Resolver
	signerClient  *signer.Client
	registryCache cache.Cache
	registry      *trading.Registry
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}
