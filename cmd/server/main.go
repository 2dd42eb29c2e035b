package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/damacus/iron-browser/internal/config"
	"github.com/damacus/iron-browser/internal/handlers"
	"github.com/damacus/iron-browser/internal/logging"
	customMiddleware "github.com/damacus/iron-browser/internal/middleware"
	"github.com/damacus/iron-browser/internal/renderer"
	"github.com/damacus/iron-browser/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(services.RealStoreFactory).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	factory  services.StoreFactory
	cfg      *config.Config
	logger   *zap.Logger
	registry *services.Registry
}

func (a *app) load(ctx context.Context, configPath, logLevel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	registry, err := services.NewRegistry(ctx, cfg, a.factory, logger)
	if err != nil {
		logger.Error("Failed to initialize storage sources", zap.Error(err))
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.registry = registry
	return nil
}

func newRootCmd(factory services.StoreFactory) *cobra.Command {
	a := &app{factory: factory}
	var (
		configPath string
		logLevel   string
	)

	root := &cobra.Command{
		Use:   "iron-browser",
		Short: "Browse S3-compatible buckets as folders",
		Long: `Iron Browser presents flat object-store listings as navigable folders,
with bounded search, folder sizes and archive downloads.

Running without a subcommand starts the web server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Context(), configPath, logLevel)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./iron-browser.yaml or /etc/iron-browser/iron-browser.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug|info|warn|error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the web server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.serve(cmd.Context())
			},
		},
		newLsCmd(a),
		newExportCmd(a),
	)
	return root
}

// serve runs the HTTP server until ctx is cancelled, then drains
// in-flight requests within the configured shutdown timeout.
func (a *app) serve(ctx context.Context) error {
	e := newServer(a.registry, a.logger)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server",
			zap.String("address", a.cfg.Server.Address),
			zap.Strings("sources", a.cfg.SourceNames()),
		)
		errCh <- e.Start(a.cfg.Server.Address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down", zap.Duration("timeout", a.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newServer(sources handlers.SourceResolver, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	browserHandler := handlers.NewBrowserHandler(sources, logger)
	downloadHandler := handlers.NewDownloadHandler(sources, logger)

	// Middleware
	e.Use(customMiddleware.RequestID(logger))
	e.Use(customMiddleware.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(customMiddleware.SecurityHeaders())
	e.Use(customMiddleware.CSRF())

	// Template Renderer
	e.Renderer = renderer.New()

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Browser
	e.GET("/", browserHandler.Browse)
	e.GET("/browser", browserHandler.Browse)
	e.GET("/api/sources", browserHandler.Sources)
	e.GET("/api/buckets", browserHandler.Buckets)
	e.GET("/api/listing", browserHandler.Listing)
	e.GET("/api/folder-stats", browserHandler.FolderStats)

	// Downloads
	e.GET("/download", downloadHandler.Download)
	e.GET("/preview", downloadHandler.Preview)
	e.POST("/download/batch", downloadHandler.DownloadBatch)
	e.GET("/download/folder", downloadHandler.DownloadFolder)

	return e
}
