package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pdf_compressor/api"
	"pdf_compressor/config"
	"pdf_compressor/pdf"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(os.Stderr)
		if err != nil {
			return err
		}

		// Check the optimizer on startup
		if cfg.Optimizer.Backend == config.BackendGhostscript {
			version, err := pdf.CheckGhostscript(cmd.Context(), cfg.Optimizer.GhostscriptPath)
			if err != nil {
				return err
			}
			logger.Info().Str("version", version).Msg("Ghostscript is available")
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}
		r := gin.New()
		r.Use(api.RequestLogger(logger), gin.Recovery())
		r.MaxMultipartMemory = 32 << 20

		compressor := &pdf.Compressor{
			Optimizer: newOptimizer(cfg, logger),
			Logger:    logger,
		}
		handler := api.NewHandler(&api.Config{
			MaxFileSize:     cfg.Upload.MaxFileSize,
			TempDir:         cfg.Upload.TempDir,
			OutputRetention: cfg.Server.OutputRetention,
			Backend:         cfg.Optimizer.Backend,
		}, compressor, logger)
		api.SetupRoutes(r, handler)

		// Create HTTP server with timeout settings
		srv := &http.Server{
			Addr:         cfg.Addr(),
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}

		// Start server in a goroutine
		errCh := make(chan error, 1)
		go func() {
			logger.Info().
				Str("addr", srv.Addr).
				Int64("max_file_size", cfg.Upload.MaxFileSize).
				Str("temp_dir", cfg.Upload.TempDir).
				Str("optimizer", cfg.Optimizer.Backend).
				Msg("Server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		// Wait for interrupt signal for graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-quit:
		}
		logger.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}

		logger.Info().Msg("Server exited gracefully")
		return nil
	},
}
