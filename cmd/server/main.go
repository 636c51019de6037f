package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirasaad/fxconv/infra/initializer"
	"github.com/amirasaad/fxconv/pkg/app"
	"github.com/amirasaad/fxconv/pkg/config"
	"github.com/amirasaad/fxconv/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger
	if closer, ok := deps.EventBus.(io.Closer); ok {
		defer closer.Close() //nolint:errcheck
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create the application and start the idle session sweeper
	a := app.New(deps, cfg)
	go a.Sessions.Run(ctx)

	// Setup Fiber app with all routes and middleware
	fiberApp := webapi.SetupApp(a)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server")
		if err := fiberApp.Shutdown(); err != nil {
			logger.Error("Server shutdown failed", "error", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
		"provider", deps.RateFetcher.Name(),
	)
	return fiberApp.Listen(addr)
}
