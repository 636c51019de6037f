package app

import (
	"log/slog"

	"github.com/amirasaad/fxconv/pkg/config"
	"github.com/amirasaad/fxconv/pkg/converter"
	"github.com/amirasaad/fxconv/pkg/currency"
	"github.com/amirasaad/fxconv/pkg/eventbus"
	"github.com/amirasaad/fxconv/pkg/handler/audit"
	"github.com/amirasaad/fxconv/pkg/provider"
	"github.com/amirasaad/fxconv/pkg/session"
)

// Deps contains the infrastructure the application is assembled from
type Deps struct {
	RateFetcher      provider.RateFetcher
	HealthChecker    provider.HealthChecker
	CurrencyRegistry *currency.Registry
	EventBus         eventbus.Bus
	Logger           *slog.Logger
}

type App struct {
	Deps     *Deps
	Config   *config.App
	Sessions *session.Store
	Counters *audit.Counters
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.CurrencyRegistry == nil {
		deps.CurrencyRegistry = currency.NewRegistry()
	}
	if cfg.Converter == nil {
		cfg.Converter = &config.Converter{}
	}
	app := &App{
		Deps:     deps,
		Config:   cfg,
		Counters: &audit.Counters{},
	}
	app.setupEventBus()
	app.Sessions = session.New(app.NewController, cfg.Session, deps.Logger)
	return app
}

// NewController builds an unmounted controller wired to the application's
// registry, bus and configured form defaults.
func (a *App) NewController(id string) *converter.Controller {
	defaults := a.Config.Converter
	return converter.New(
		a.Deps.RateFetcher,
		converter.WithID(id),
		converter.WithRegistry(a.Deps.CurrencyRegistry),
		converter.WithBus(a.Deps.EventBus),
		converter.WithLogger(a.Deps.Logger),
		converter.WithInitial(defaults.DefaultAmount, defaults.DefaultSource, defaults.DefaultTarget),
	)
}
