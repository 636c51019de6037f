// Package audit holds bus handlers that log and count converter events.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/amirasaad/fxconv/pkg/converter"
	"github.com/amirasaad/fxconv/pkg/eventbus"
)

// Counters tallies fetch outcomes across all sessions.
type Counters struct {
	Loaded    atomic.Int64
	Failed    atomic.Int64
	Discarded atomic.Int64
}

// Snapshot returns the current counts keyed by outcome.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"rates_loaded":    c.Loaded.Load(),
		"rates_failed":    c.Failed.Load(),
		"rates_discarded": c.Discarded.Load(),
	}
}

// HandleRatesLoaded logs a successful table replacement.
func HandleRatesLoaded(logger *slog.Logger, counters *Counters) eventbus.HandlerFunc {
	return func(ctx context.Context, event eventbus.Event) error {
		log := logger.With("handler", "audit.HandleRatesLoaded", "event_type", event.Type())
		e, ok := event.(converter.RatesLoaded)
		if !ok {
			err := fmt.Errorf("expected RatesLoaded event, got %T", event)
			log.Error("invalid event type", "error", err)
			return err
		}
		counters.Loaded.Add(1)
		log.Debug("rates loaded",
			"session_id", e.SessionID,
			"base", e.Base,
			"count", e.Count,
			"last_updated", e.LastUpdated,
		)
		return nil
	}
}

// HandleRatesFailed logs a failed fetch with its user-facing message and cause.
func HandleRatesFailed(logger *slog.Logger, counters *Counters) eventbus.HandlerFunc {
	return func(ctx context.Context, event eventbus.Event) error {
		log := logger.With("handler", "audit.HandleRatesFailed", "event_type", event.Type())
		e, ok := event.(converter.RatesFailed)
		if !ok {
			err := fmt.Errorf("expected RatesFailed event, got %T", event)
			log.Error("invalid event type", "error", err)
			return err
		}
		counters.Failed.Add(1)
		log.Warn("rate fetch failed",
			"session_id", e.SessionID,
			"base", e.Base,
			"message", e.Message,
			"cause", e.Cause,
		)
		return nil
	}
}

// HandleRatesDiscarded logs a completion that arrived after a newer request.
func HandleRatesDiscarded(logger *slog.Logger, counters *Counters) eventbus.HandlerFunc {
	return func(ctx context.Context, event eventbus.Event) error {
		log := logger.With("handler", "audit.HandleRatesDiscarded", "event_type", event.Type())
		e, ok := event.(converter.RatesDiscarded)
		if !ok {
			err := fmt.Errorf("expected RatesDiscarded event, got %T", event)
			log.Error("invalid event type", "error", err)
			return err
		}
		counters.Discarded.Add(1)
		log.Debug("stale rate response discarded",
			"session_id", e.SessionID,
			"base", e.Base,
			"token", e.Token,
			"latest", e.Latest,
		)
		return nil
	}
}

// HandleConversionUpdated logs the new result line.
func HandleConversionUpdated(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, event eventbus.Event) error {
		log := logger.With("handler", "audit.HandleConversionUpdated", "event_type", event.Type())
		e, ok := event.(converter.ConversionUpdated)
		if !ok {
			err := fmt.Errorf("expected ConversionUpdated event, got %T", event)
			log.Error("invalid event type", "error", err)
			return err
		}
		log.Debug("conversion updated",
			"session_id", e.SessionID,
			"conversion", fmt.Sprintf("%s %s = %s %s", e.Amount, e.Source, e.Result, e.Target),
			"rate", e.Rate,
		)
		return nil
	}
}
