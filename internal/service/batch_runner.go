package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"bolx/internal/assembler"
	"bolx/internal/domain"
)

// DocumentProcessor runs one document through the extraction pipeline.
type DocumentProcessor interface {
	Process(ctx context.Context, doc domain.SourceDocument) (domain.DocumentResult, error)
}

// BatchConfig holds settings for the batch runner.
type BatchConfig struct {
	Concurrency     int
	DocumentTimeout time.Duration
}

// BatchRunner processes documents on a bounded worker pool. Documents run in
// parallel; pages of one document run in sequence.
type BatchRunner struct {
	proc DocumentProcessor
	cfg  BatchConfig
}

// NewBatchRunner creates a BatchRunner. A non-positive concurrency uses one
// worker per CPU.
func NewBatchRunner(proc DocumentProcessor, cfg BatchConfig) *BatchRunner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	return &BatchRunner{proc: proc, cfg: cfg}
}

// Run processes docs and returns one result per input, at the input's index.
// It fails only when the pipeline reports that no templates are available.
func (r *BatchRunner) Run(ctx context.Context, docs []domain.SourceDocument) ([]domain.DocumentResult, domain.BatchSummary, error) {
	start := time.Now()
	results := make([]domain.DocumentResult, len(docs))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		fatalMu  sync.Mutex
		fatalErr error
	)
	sem := make(chan struct{}, r.cfg.Concurrency)

	log.Printf("service.BatchRunner: processing %d documents (concurrency=%d, timeout=%s)",
		len(docs), r.cfg.Concurrency, r.cfg.DocumentTimeout)

	for i := range docs {
		select {
		case sem <- struct{}{}: // acquire
		case <-runCtx.Done():
			results[i] = assembler.Failed(docs[i], runCtx.Err())
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			res, err := r.runOne(runCtx, docs[i])
			results[i] = res
			if errors.Is(err, domain.ErrNoTemplates) {
				fatalMu.Lock()
				if fatalErr == nil {
					fatalErr = err
				}
				fatalMu.Unlock()
				cancel()
			}
		}(i)
	}
	wg.Wait()

	summary := domain.Summarize(results, time.Since(start))
	log.Printf("service.BatchRunner: done in %s (matched=%d, no_match=%d, failed=%d, degraded=%d)",
		summary.Duration.Round(time.Millisecond), summary.Matched, summary.NoMatch, summary.Failed, summary.Degraded)

	if fatalErr != nil {
		return results, summary, fatalErr
	}
	return results, summary, nil
}

type outcome struct {
	res domain.DocumentResult
	err error
}

// runOne processes a single document under its own timeout. A timed-out
// worker keeps running until it notices the cancellation; its result is
// discarded.
func (r *BatchRunner) runOne(ctx context.Context, doc domain.SourceDocument) (domain.DocumentResult, error) {
	docCtx := ctx
	if r.cfg.DocumentTimeout > 0 {
		var cancel context.CancelFunc
		docCtx, cancel = context.WithTimeout(ctx, r.cfg.DocumentTimeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("service.BatchRunner: panic processing %s: %v\n%s", doc.Name, rec, debug.Stack())
				done <- outcome{res: assembler.Failed(doc, fmt.Errorf("internal error: %v", rec))}
			}
		}()
		res, err := r.proc.Process(docCtx, doc)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && !errors.Is(o.err, domain.ErrNoTemplates) && docCtx.Err() != nil {
			return timeoutResult(doc, ctx), nil
		}
		return o.res, o.err
	case <-docCtx.Done():
		log.Printf("service.BatchRunner: %s did not finish: %v", doc.Name, docCtx.Err())
		return timeoutResult(doc, ctx), nil
	}
}

func timeoutResult(doc domain.SourceDocument, parent context.Context) domain.DocumentResult {
	if err := parent.Err(); err != nil {
		return assembler.Failed(doc, err)
	}
	return assembler.Failed(doc, domain.ErrDocumentTimeout)
}
