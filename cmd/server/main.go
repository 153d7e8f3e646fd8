package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"facturo/internal/config"
	"facturo/internal/docsource"
	"facturo/internal/handler"
	"facturo/internal/port"
	"facturo/internal/remote"
	"facturo/internal/remote/claude"
	"facturo/internal/router"
	"facturo/internal/service"
	localstorage "facturo/internal/storage/local"
	s3storage "facturo/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize storage
	var storage port.ObjectStorage
	switch cfg.Storage.Backend {
	case "s3":
		storage, err = s3storage.NewS3Client(&cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	case "local":
		storage, err = localstorage.NewClient(cfg.Storage.LocalDir)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	// Document parsing backend
	source := docsource.NewClient(&cfg.DocSource)

	// Remote extraction backend; without an API key the pipeline runs
	// local-only.
	var remoteExtractor port.RemoteExtractor
	if cfg.Remote.APIKey != "" {
		client, err := claude.NewClient(&cfg.Remote, cfg.Extraction.ConfidenceThreshold)
		if err != nil {
			return fmt.Errorf("failed to initialize remote backend: %w", err)
		}
		remoteExtractor = remote.NewRetryingExtractor(client,
			cfg.Remote.MaxAttempts,
			time.Duration(cfg.Remote.BackoffBaseMs)*time.Millisecond)
	} else {
		log.Println("no remote API key configured, running local-only extraction")
	}

	// Initialize services
	jobs := service.NewMemoryJobStore()
	processor := service.NewProcessor(remoteExtractor, cfg.Extraction)
	invoiceSvc := service.NewInvoiceService(jobs, storage, source, processor, cfg.Upload, cfg.Queue.Concurrency)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	exportH := handler.NewExportHandler(invoiceSvc)
	healthH := handler.NewHealthHandler(source)

	// Setup router
	r := router.Setup(invoiceH, exportH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("shutting down, waiting for in-flight documents")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	invoiceSvc.Wait()

	return nil
}
