// Package app assembles the converter application and registers its event handlers.
package app

import (
	"github.com/amirasaad/fxconv/pkg/converter"
	"github.com/amirasaad/fxconv/pkg/handler/audit"
)

// setupEventBus registers all event handlers with the application's bus.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger

	bus.Register(converter.EventRatesLoaded, audit.HandleRatesLoaded(logger, a.Counters))
	bus.Register(converter.EventRatesFailed, audit.HandleRatesFailed(logger, a.Counters))
	bus.Register(converter.EventRatesDiscarded, audit.HandleRatesDiscarded(logger, a.Counters))
	bus.Register(converter.EventConversionUpdated, audit.HandleConversionUpdated(logger))
}
