package initializer

import (
	"fmt"
	"log/slog"

	infra_eventbus "github.com/amirasaad/fxconv/infra/eventbus"
	"github.com/amirasaad/fxconv/infra/provider/exchangerateapi"
	"github.com/amirasaad/fxconv/pkg/app"
	"github.com/amirasaad/fxconv/pkg/config"
	"github.com/amirasaad/fxconv/pkg/currency"
	"github.com/amirasaad/fxconv/pkg/eventbus"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	if cfg.ExchangeRate == nil {
		return nil, fmt.Errorf("exchange rate provider is not configured")
	}
	deps = &app.Deps{}
	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)
	deps.Logger = logger

	deps.CurrencyRegistry = currency.NewRegistry()
	logger.Info("Currency registry ready", "count", deps.CurrencyRegistry.Count())

	// Create the exchange rate provider
	client := exchangerateapi.New(cfg.ExchangeRate, nil, logger)
	deps.RateFetcher = client
	deps.HealthChecker = client

	// Initialize event bus
	deps.EventBus, err = initEventBus(cfg, logger)
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// initEventBus selects the Redis stream bus when a URL is configured. An
// unreachable Redis falls back to the in-memory bus.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	redisCfg := cfg.Redis
	if redisCfg == nil || redisCfg.URL == "" {
		logger.Info("Using in-memory event bus")
		return infra_eventbus.NewWithMemory(logger), nil
	}
	if redisCfg.Stream == "" {
		return nil, fmt.Errorf("redis event bus requires a stream name")
	}
	bus, err := infra_eventbus.NewWithRedis(redisCfg.URL, redisCfg.Stream, redisCfg.MaxLen, logger)
	if err != nil {
		logger.Warn("Redis event bus unavailable, falling back to in-memory", "error", err)
		return infra_eventbus.NewWithMemory(logger), nil
	}
	logger.Info("Using Redis event bus", "stream", redisCfg.Stream)
	return bus, nil
}
