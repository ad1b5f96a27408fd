package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/notification-ledger/internal/api/handlers"
	"github.com/dvloznov/notification-ledger/internal/api/middleware"
	"github.com/dvloznov/notification-ledger/internal/archive"
	"github.com/dvloznov/notification-ledger/internal/config"
	"github.com/dvloznov/notification-ledger/internal/infra"
	"github.com/dvloznov/notification-ledger/internal/ingest"
	"github.com/dvloznov/notification-ledger/internal/jobs"
	"github.com/dvloznov/notification-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/notification-ledger/internal/logger"
	"github.com/dvloznov/notification-ledger/internal/pipeline"
	"github.com/dvloznov/notification-ledger/internal/registry"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("api", flag.ExitOnError)
	cfg.BindFlags(fs)
	port := fs.String("port", "8080", "HTTP server port")
	workers := fs.Int("workers", 2, "Number of batch job workers")
	_ = fs.Parse(os.Args[1:])

	log := logger.NewWithLevel(os.Stdout, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.APIToken == "" {
		log.Warn().Msg("No API token configured - requests are not authenticated")
	}

	ctx := context.Background()

	repo, err := infra.OpenRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("Failed to open event store")
	}
	defer repo.Close()

	reg := registry.New(
		registry.WithFloor(cfg.ArbitrationFloor),
		registry.WithLogger(logger.Component(log, "registry")),
	)
	defer reg.DisposeAll()

	proc := pipeline.New(cfg,
		pipeline.WithRegistry(reg),
		pipeline.WithLogger(logger.Component(log, "pipeline")),
	)

	svcOpts := []ingest.Option{ingest.WithLogger(logger.Component(log, "ingest"))}
	if cfg.ArchiveBucket != "" {
		gcs, err := archive.New(ctx, cfg.ArchiveBucket)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.ArchiveBucket).Msg("Failed to create archive client")
		}
		defer gcs.Close()
		svcOpts = append(svcOpts, ingest.WithArchive(gcs))
	} else {
		log.Warn().Msg("No GCS bucket configured - batches will not be archived")
	}
	svc := ingest.NewService(proc, repo, svcOpts...)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore,
		inmemory.WithWorkers(*workers),
		inmemory.WithLogger(logger.Component(log, "jobs")),
	)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, jobs.NewIngestHandler(svc)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	mux := handlers.Router{
		Messages: handlers.NewMessagesHandler(svc, jobQueue),
		Events:   handlers.NewEventsHandler(repo),
		Jobs:     handlers.NewJobsHandler(jobStore),
		Locales:  handlers.NewLocalesHandler(reg),
	}.Mux()

	handler := middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
		middleware.Auth(cfg.APIToken),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("backend", cfg.Backend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight jobs finish before their context is cancelled.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
