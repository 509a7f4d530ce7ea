package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trellishq/trellis/internal/cascade"
	"github.com/trellishq/trellis/internal/config"
	"github.com/trellishq/trellis/internal/events"
	"github.com/trellishq/trellis/internal/export"
	"github.com/trellishq/trellis/internal/notify"
	"github.com/trellishq/trellis/internal/server"
	"github.com/trellishq/trellis/internal/store/postgres"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the Trellis HTTP server",
	GroupID: "system",
	// Serving does not need a client connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (TRELLIS_NATS_URL not set)")
		}

		sink := notify.NewStoreSink(store, publisher, logger)
		cascader := cascade.New(sink, logger)
		graphServer := server.New(store, publisher, cascader)

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: graphServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start the export scheduler if any destinations are configured.
		var scheduler *export.Scheduler
		if cfg.ExportInterval > 0 {
			var dests []export.Destination

			if cfg.ExportS3Bucket != "" {
				s3Dest, err := export.NewS3Destination(
					context.Background(),
					cfg.ExportS3Bucket,
					cfg.ExportS3Key,
					cfg.ExportS3Region,
					cfg.ExportS3Endpoint,
				)
				if err != nil {
					logger.Error("failed to create S3 export destination", "err", err)
				} else {
					dests = append(dests, s3Dest)
					logger.Info("export S3 destination enabled", "bucket", cfg.ExportS3Bucket, "key", cfg.ExportS3Key)
				}
			}

			if cfg.ExportDir != "" {
				fileDest, err := export.NewFileDestination(cfg.ExportDir, "export.jsonl")
				if err != nil {
					logger.Error("failed to create file export destination", "err", err)
				} else {
					dests = append(dests, fileDest)
					logger.Info("export file destination enabled", "dir", cfg.ExportDir)
				}
			}

			if len(dests) > 0 {
				var projects []string
				if cfg.ExportProjects != "" {
					projects = strings.Split(cfg.ExportProjects, ",")
				}
				scheduler = export.NewScheduler(store, dests, projects, cfg.ExportInterval, logger)
				scheduler.Start()
				logger.Info("export scheduler started", "interval", cfg.ExportInterval)
			}
		}

		logger.Info("trellis server started", "http_addr", cfg.HTTPAddr)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("export scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
