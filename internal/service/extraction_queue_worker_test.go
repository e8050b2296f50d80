package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bolx/internal/domain"
	"bolx/internal/service"
	"bolx/mocks"
)

func TestExtractionQueueWorker_PollsAndDispatches(t *testing.T) {
	jobRepo := new(mocks.MockJobRepo)
	svc := new(mocks.MockExtractionService)

	job := domain.ExtractionJob{ID: uuid.New(), SourceKey: "layouts/a.json", Attempts: 1, Status: domain.JobStatusProcessing}

	// First poll returns one job, later polls return nothing.
	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ExtractionJob{job}, nil).Once()
	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ExtractionJob{}, nil).Maybe()
	svc.On("ProcessJob", mock.Anything, mock.AnythingOfType("*domain.ExtractionJob"), 3).Return().Maybe()

	worker := service.NewExtractionQueueWorker(jobRepo, svc, service.QueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	jobRepo.AssertCalled(t, "ClaimQueued", mock.Anything, mock.AnythingOfType("int"))
	svc.AssertCalled(t, "ProcessJob", mock.Anything, mock.AnythingOfType("*domain.ExtractionJob"), 3)
}

func TestExtractionQueueWorker_RespectsConcurrencyCap(t *testing.T) {
	jobRepo := new(mocks.MockJobRepo)
	svc := new(mocks.MockExtractionService)
	cfg := service.QueueConfig{PollInterval: 50 * time.Millisecond, MaxRetries: 3, Concurrency: 2}

	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ExtractionJob{}, nil).Maybe()

	worker := service.NewExtractionQueueWorker(jobRepo, svc, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	for _, call := range jobRepo.Calls {
		if call.Method == "ClaimQueued" {
			assert.LessOrEqual(t, call.Arguments.Get(1).(int), cfg.Concurrency)
		}
	}
}

func TestExtractionQueueWorker_CleanShutdown(t *testing.T) {
	jobRepo := new(mocks.MockJobRepo)
	svc := new(mocks.MockExtractionService)
	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ExtractionJob{}, nil).Maybe()

	worker := service.NewExtractionQueueWorker(jobRepo, svc, service.QueueConfig{PollInterval: 50 * time.Millisecond, Concurrency: 5})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not shut down")
	}
}
