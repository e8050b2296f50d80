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

	"bolx/internal/config"
	"bolx/internal/email/noop"
	"bolx/internal/email/ses"
	"bolx/internal/handler"
	"bolx/internal/port"
	"bolx/internal/repository/postgres"
	"bolx/internal/router"
	"bolx/internal/service"
	s3storage "bolx/internal/storage/s3"
	"bolx/internal/templates"
)

// @title bolx API
// @version 1.0
// @description Template-matching structured extraction for bills of lading.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	templateRepo := postgres.NewTemplateRepo(db)
	resultRepo := postgres.NewExtractionRepo(db)
	jobRepo := postgres.NewJobRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	notifier, err := newNotifier(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	// Load templates
	source, err := templateSource(cfg, s3Client, templateRepo)
	if err != nil {
		return err
	}
	catalog := templates.NewCatalog(cfg.Extraction.RegionOverlapTolerance, source)
	report, err := catalog.Reload(ctx)
	if err != nil {
		// The server still starts so templates can be uploaded and reloaded.
		log.Printf("template catalog: %v", err)
	} else {
		log.Printf("template catalog: loaded %d templates from %s, skipped %d",
			len(report.Loaded), source.Name(), len(report.Skipped))
	}

	// Initialize services
	pipeline := service.NewPipelineFromConfig(&cfg.Extraction, catalog)
	batch := service.NewBatchRunner(pipeline, service.BatchConfig{
		Concurrency:     cfg.Extraction.Concurrency,
		DocumentTimeout: cfg.Extraction.DocumentTimeout,
	})
	authSvc := service.NewAuthService(cfg.JWT, cfg.Auth)
	extractionSvc := service.NewExtractionService(pipeline, batch, resultRepo, jobRepo, s3Client, notifier,
		service.ExtractionServiceConfig{
			Bucket:        cfg.S3.Bucket,
			OutputPrefix:  cfg.S3.OutputPrefix,
			PresignExpiry: cfg.S3.PresignExpiry,
			NotifyTo:      cfg.Email.NotifyTo,
		})
	templateSvc := service.NewTemplateService(catalog, templateRepo, cfg.Extraction.RegionOverlapTolerance)

	if cfg.Queue.Enabled {
		worker := service.NewExtractionQueueWorker(jobRepo, extractionSvc, service.QueueConfig{
			PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
			MaxRetries:   cfg.Queue.MaxRetries,
			Concurrency:  cfg.Queue.Concurrency,
			JobTimeout:   2 * cfg.Extraction.DocumentTimeout,
		})
		go worker.Start(ctx)
	}

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	extractionH := handler.NewExtractionHandler(extractionSvc, cfg.Server.MaxBatchItems)
	templateH := handler.NewTemplateHandler(templateSvc)
	jobH := handler.NewJobHandler(extractionSvc)
	healthH := handler.NewHealthHandler(db, catalog)

	// Setup router
	r := router.Setup(router.Options{
		AuthDisabled:   cfg.Auth.Disabled,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyMB << 20,
	}, authSvc, authH, extractionH, templateH, jobH, healthH)

	if cfg.Auth.Disabled {
		log.Printf("WARNING: authentication is disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func newNotifier(cfg *config.EmailConfig) (port.Notifier, error) {
	if cfg.Provider == "ses" {
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
	}
	return noop.NewNoopSender(), nil
}

func templateSource(cfg *config.Config, storage port.ObjectStorage, repo port.TemplateRepository) (templates.Source, error) {
	switch cfg.Templates.Source {
	case "dir", "":
		return templates.DirSource{Dir: cfg.Templates.Dir}, nil
	case "s3":
		return templates.StorageSource{Storage: storage, Bucket: cfg.S3.Bucket, Prefix: cfg.S3.TemplatePrefix}, nil
	case "db":
		return templates.RepositorySource{Repo: repo}, nil
	default:
		return nil, fmt.Errorf("unknown template source %q (want dir, s3 or db)", cfg.Templates.Source)
	}
}
