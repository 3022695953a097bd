package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aidenai/intranet/backend/internal/router"
	"github.com/aidenai/intranet/backend/internal/tokens"
	"github.com/aidenai/intranet/backend/pkg/config"
	"github.com/aidenai/intranet/backend/pkg/identity"
	"github.com/aidenai/intranet/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	validator, err := identity.InitMicrosoft(identity.ProviderOptions{
		Issuer:   cfg.MSIssuer,
		JWKSURL:  cfg.MSJWKSURL,
		ClientID: cfg.MSClientID,
		CacheTTL: cfg.JWKSCacheTTL,
		Redis:    db.Redis,
	})
	if err != nil {
		return err
	}

	issuer, err := tokens.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return err
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Debug

	config.SetupMiddleware(e, cfg)

	if err := router.SetupRoutes(e, router.Deps{
		AppName:  cfg.AppName,
		DB:       db.Postgres,
		Identity: validator,
		Issuer:   issuer,
	}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr(), "env", cfg.Env)
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
