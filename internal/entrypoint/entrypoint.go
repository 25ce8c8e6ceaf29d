package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/reading-tracker/internal/config"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, log *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	// Stop background work after in-flight requests are done
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info("server exiting")
	return nil
}

// Run builds the application, starts background work and serves HTTP.
func Run(cfg *config.Config, log *zap.Logger, version string) error {
	log.Info("starting reading tracker", zap.String("version", version))

	if cfg.Auth.Mode == config.AuthModeToken {
		log.Info("token authentication enabled")
	} else {
		log.Warn("authentication disabled, all requests act as the local user")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := app.EnableBackground(); err != nil {
		app.Shutdown(ctx)
		return err
	}
	app.Start(ctx)

	return Serve(app.Router(version), cfg, log, app.Shutdown)
}
