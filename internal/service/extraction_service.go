package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"bolx/internal/assembler"
	"bolx/internal/domain"
	"bolx/internal/port"
)

const defaultMaxJobAttempts = 3

// ExtractionOutput is the result of one extraction plus its rendering.
type ExtractionOutput struct {
	Result   domain.DocumentResult    `json:"result"`
	Markdown string                   `json:"markdown"`
	Record   *domain.ExtractionRecord `json:"-"`
}

// BatchOutput is the result of a batch extraction.
type BatchOutput struct {
	Results []domain.DocumentResult `json:"results"`
	Summary domain.BatchSummary     `json:"summary"`
}

// ExtractionServiceConfig holds storage and notification settings.
type ExtractionServiceConfig struct {
	Bucket        string
	OutputPrefix  string
	PresignExpiry int64
	NotifyTo      string
}

// ExtractionService defines the extraction business logic.
type ExtractionService interface {
	Extract(ctx context.Context, doc domain.SourceDocument) (*ExtractionOutput, error)
	ExtractBatch(ctx context.Context, docs []domain.SourceDocument) (*BatchOutput, error)
	GetResult(ctx context.Context, id uuid.UUID) (*domain.ExtractionRecord, error)
	ListResults(ctx context.Context, offset, limit int) ([]domain.ExtractionRecord, int, error)
	EnqueueJob(ctx context.Context, sourceKey string) (*domain.ExtractionJob, error)
	GetJob(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error)
	ProcessJob(ctx context.Context, job *domain.ExtractionJob, maxAttempts int)
}

type extractionService struct {
	pipeline   DocumentProcessor
	batch      *BatchRunner
	resultRepo port.ExtractionRepository
	jobRepo    port.JobRepository
	storage    port.ObjectStorage
	notifier   port.Notifier
	cfg        ExtractionServiceConfig
}

// NewExtractionService creates a new ExtractionService. storage and notifier
// may be nil; outputs are then kept only in the database.
func NewExtractionService(
	pipeline DocumentProcessor,
	batch *BatchRunner,
	resultRepo port.ExtractionRepository,
	jobRepo port.JobRepository,
	storage port.ObjectStorage,
	notifier port.Notifier,
	cfg ExtractionServiceConfig,
) ExtractionService {
	return &extractionService{
		pipeline:   pipeline,
		batch:      batch,
		resultRepo: resultRepo,
		jobRepo:    jobRepo,
		storage:    storage,
		notifier:   notifier,
		cfg:        cfg,
	}
}

func (s *extractionService) Extract(ctx context.Context, doc domain.SourceDocument) (*ExtractionOutput, error) {
	res, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, res, nil)
}

func (s *extractionService) ExtractBatch(ctx context.Context, docs []domain.SourceDocument) (*BatchOutput, error) {
	results, summary, err := s.batch.Run(ctx, docs)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if _, err := s.store(ctx, results[i], nil); err != nil {
			log.Printf("extractionService.ExtractBatch: storing %s: %v", results[i].SourceName, err)
		}
	}
	s.notify(ctx, summary, results)
	return &BatchOutput{Results: results, Summary: summary}, nil
}

func (s *extractionService) GetResult(ctx context.Context, id uuid.UUID) (*domain.ExtractionRecord, error) {
	rec, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.OutputKey != "" && s.storage != nil {
		url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, rec.OutputKey, s.cfg.PresignExpiry)
		if err != nil {
			log.Printf("extractionService.GetResult: presign %s failed: %v", rec.OutputKey, err)
		} else {
			rec.OutputURL = url
		}
	}
	return rec, nil
}

func (s *extractionService) ListResults(ctx context.Context, offset, limit int) ([]domain.ExtractionRecord, int, error) {
	return s.resultRepo.List(ctx, offset, limit)
}

func (s *extractionService) EnqueueJob(ctx context.Context, sourceKey string) (*domain.ExtractionJob, error) {
	sourceKey = strings.TrimSpace(sourceKey)
	if sourceKey == "" {
		return nil, fmt.Errorf("%w: source key is required", domain.ErrInvalidLayout)
	}
	job := &domain.ExtractionJob{
		ID:        uuid.New(),
		SourceKey: sourceKey,
		Status:    domain.JobStatusQueued,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	log.Printf("extractionService.EnqueueJob: queued job %s for %s", job.ID, sourceKey)
	return job, nil
}

func (s *extractionService) GetJob(ctx context.Context, id uuid.UUID) (*domain.ExtractionJob, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// ProcessJob downloads a layout from object storage, extracts it and stores
// the result. Failures are retried until maxAttempts is reached.
func (s *extractionService) ProcessJob(ctx context.Context, job *domain.ExtractionJob, maxAttempts int) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxJobAttempts
	}
	if s.storage == nil {
		s.failJob(ctx, job, errors.New("object storage is not configured"), false)
		return
	}

	data, err := s.storage.Download(ctx, s.cfg.Bucket, job.SourceKey)
	if err != nil {
		s.failJob(ctx, job, fmt.Errorf("downloading layout: %w", err), job.Attempts < maxAttempts)
		return
	}

	var doc domain.SourceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.failJob(ctx, job, fmt.Errorf("%w: %v", domain.ErrInvalidLayout, err), false)
		return
	}
	if doc.Name == "" {
		doc.Name = job.SourceKey
	}
	if doc.ID == "" {
		doc.ID = job.ID.String()
	}

	res, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		s.failJob(ctx, job, err, job.Attempts < maxAttempts)
		return
	}

	out, err := s.store(ctx, res, &job.ID)
	if err != nil {
		s.failJob(ctx, job, err, job.Attempts < maxAttempts)
		return
	}

	if err := s.jobRepo.MarkCompleted(ctx, job.ID, out.Result.ID); err != nil {
		log.Printf("extractionService.ProcessJob: failed to complete job %s: %v", job.ID, err)
		return
	}
	log.Printf("extractionService.ProcessJob: job %s finished with outcome %s", job.ID, res.Outcome)
}

func (s *extractionService) failJob(ctx context.Context, job *domain.ExtractionJob, cause error, requeue bool) {
	log.Printf("extractionService.ProcessJob: job %s attempt %d failed (requeue=%t): %v",
		job.ID, job.Attempts, requeue, cause)
	if err := s.jobRepo.MarkFailed(ctx, job.ID, cause.Error(), requeue); err != nil {
		log.Printf("extractionService.ProcessJob: failed to record failure for %s: %v", job.ID, err)
	}
}

// store renders res, uploads the Markdown when storage is configured and
// persists the record.
func (s *extractionService) store(ctx context.Context, res domain.DocumentResult, jobID *uuid.UUID) (*ExtractionOutput, error) {
	markdown := assembler.RenderMarkdown(res)
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	rec := &domain.ExtractionRecord{
		ID:              res.ID,
		JobID:           jobID,
		DocumentName:    res.SourceName,
		TemplateID:      res.TemplateID,
		Outcome:         res.Outcome,
		MatchConfidence: res.MatchConfidence,
		Degraded:        res.Degraded,
		Result:          payload,
		Markdown:        markdown,
	}

	if s.storage != nil && s.cfg.Bucket != "" {
		key := s.cfg.OutputPrefix + res.ID.String() + ".md"
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.Bucket,
			Key:         key,
			Body:        bytes.NewReader([]byte(markdown)),
			ContentType: "text/markdown; charset=utf-8",
			Size:        int64(len(markdown)),
		})
		if err != nil {
			log.Printf("extractionService.store: upload of %s failed: %v", key, err)
		} else {
			rec.OutputKey = key
		}
	}

	if err := s.resultRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving result: %w", err)
	}
	return &ExtractionOutput{Result: res, Markdown: markdown, Record: rec}, nil
}

func (s *extractionService) notify(ctx context.Context, summary domain.BatchSummary, results []domain.DocumentResult) {
	if s.notifier == nil || s.cfg.NotifyTo == "" {
		return
	}
	if err := s.notifier.SendBatchSummary(ctx, s.cfg.NotifyTo, summary, results); err != nil {
		log.Printf("extractionService.ExtractBatch: summary notification failed: %v", err)
	}
}
