package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfredjeanlab/casegraph/internal/config"
	"github.com/alfredjeanlab/casegraph/internal/events"
	"github.com/alfredjeanlab/casegraph/internal/export"
	"github.com/alfredjeanlab/casegraph/internal/server"
	"github.com/alfredjeanlab/casegraph/internal/store"
	"github.com/alfredjeanlab/casegraph/internal/store/postgres"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the casegraph HTTP and gRPC servers",
	GroupID: "system",
	// No client connection is needed to serve.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		pg, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		publisher, err := newPublisher(cfg, logger)
		if err != nil {
			pg.Close()
			return err
		}

		cgServer, err := server.NewCaseGraphServer(pg, publisher, cfg.LayoutCacheSize)
		if err != nil {
			publisher.Close()
			pg.Close()
			return err
		}
		cgServer.StartViewReaper(cfg.ViewIdleTimeout.Duration())
		grpcServer := server.NewGRPCServer(cgServer, cfg.AuthToken)

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			cgServer.Stop()
			publisher.Close()
			pg.Close()
			return err
		}

		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           cgServer.NewHTTPHandler(cfg.AuthToken),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startExport(cfg, pg, logger)

		logger.Info("casegraph server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
			"auth", cfg.AuthToken != "",
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("export scheduler stopped")
		}

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		cgServer.Stop()
		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := pg.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// newPublisher connects to NATS when configured. Events always reach the
// log at debug level so a server without NATS still records them.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	debugLog := events.PublisherFunc(func(_ context.Context, topic string, _ any) error {
		logger.Debug("event", "topic", topic)
		return nil
	})
	if cfg.NATSURL == "" {
		logger.Info("events disabled (CASEGRAPH_NATS_URL not set)")
		return events.Fanout{debugLog}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATSURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("events enabled", "nats_url", cfg.NATSURL)
	return events.Fanout{pub, debugLog}, nil
}

// startExport starts the snapshot scheduler when export is configured.
func startExport(cfg *config.Config, s store.Store, logger *slog.Logger) *export.Scheduler {
	if !cfg.Export.Enabled() {
		return nil
	}
	var dests []export.Destination
	if cfg.Export.S3Bucket != "" {
		s3Dest, err := export.NewS3Destination(
			context.Background(),
			cfg.Export.S3Bucket,
			cfg.Export.S3Key,
			cfg.Export.S3Region,
			cfg.Export.S3Endpoint,
		)
		if err != nil {
			logger.Error("failed to create S3 export destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("export S3 destination enabled", "bucket", cfg.Export.S3Bucket, "key", cfg.Export.S3Key)
		}
	}
	if cfg.Export.File != "" {
		dests = append(dests, export.NewFileDestination(cfg.Export.File))
		logger.Info("export file destination enabled", "path", cfg.Export.File)
	}
	if len(dests) == 0 {
		return nil
	}
	scheduler := export.NewScheduler(s, dests, cfg.Export.Interval.Duration(), logger)
	scheduler.Start()
	logger.Info("export scheduler started", "interval", cfg.Export.Interval.Duration())
	return scheduler
}
