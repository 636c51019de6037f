// Package webapi exposes the converter over HTTP.
// It is organized into sub-packages:
// - session: conversion form endpoints
// - currency: supported currency list
// - events: recent converter events
package webapi

import (
	"errors"

	"github.com/amirasaad/fxconv/pkg/app"
	"github.com/amirasaad/fxconv/webapi/common"
	currencyweb "github.com/amirasaad/fxconv/webapi/currency"
	eventsweb "github.com/amirasaad/fxconv/webapi/events"
	sessionweb "github.com/amirasaad/fxconv/webapi/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := fiber.Config{
		AppName: "fxconv",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	}
	// c.IP() reads X-Forwarded-For only when the peer is a trusted proxy.
	if srv := a.Config.Server; srv != nil && len(srv.TrustedProxies) > 0 {
		cfg.ProxyHeader = fiber.HeaderXForwardedFor
		cfg.EnableTrustedProxyCheck = true
		cfg.TrustedProxies = srv.TrustedProxies
		cfg.EnableIPValidation = true
	}
	fiberApp := fiber.New(cfg)

	if rl := a.Config.RateLimit; rl != nil && rl.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:        rl.MaxRequests,
			Expiration: rl.Window,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(requestid.New())
	if a.Config.Env != "test" {
		fiberApp.Use(logger.New())
	}

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("fxconv is running! 🚀")
	})
	fiberApp.Get("/healthz", Health(a))

	sessionweb.Routes(fiberApp, a.Sessions, a.Deps.Logger)
	currencyweb.Routes(fiberApp, a.Deps.CurrencyRegistry)
	if a.Deps.EventBus != nil {
		eventsweb.Routes(fiberApp, a.Deps.EventBus)
	}
	return fiberApp
}

// Health returns a Fiber handler that checks the rate provider.
func Health(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := fiber.Map{
			"sessions": a.Sessions.Len(),
			"events":   a.Counters.Snapshot(),
		}
		if hc := a.Deps.HealthChecker; hc != nil {
			if err := hc.CheckHealth(c.UserContext()); err != nil {
				return common.ProblemDetailsJSON(c, "Rate provider unavailable", err, fiber.StatusServiceUnavailable)
			}
		}
		if a.Deps.RateFetcher != nil {
			data["provider"] = a.Deps.RateFetcher.Name()
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "OK", data)
	}
}
