package handler

import (
	"time"

	"github.com/google/uuid"

	"bolx/internal/domain"
	"bolx/internal/service"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// BatchRequest represents the batch extraction request body.
type BatchRequest struct {
	Documents []domain.SourceDocument `json:"documents" binding:"required"`
}

// EnqueueJobRequest represents the enqueue job request body.
type EnqueueJobRequest struct {
	SourceKey string `json:"source_key" binding:"required" example:"layouts/bol-2025-08-26.json"`
}

// IssueTokenRequest represents the token issuance request body.
type IssueTokenRequest struct {
	Subject string      `json:"subject" binding:"required" example:"ingest-worker"`
	Role    domain.Role `json:"role" binding:"required" example:"service"`
	TTL     string      `json:"ttl" example:"24h"`
}

// --- Response Types ---

// Response is the generic envelope used in swagger annotations.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody documents the error envelope.
type ErrorResponseBody struct {
	Success bool     `json:"success" example:"false"`
	Error   APIError `json:"error"`
}

// ExtractionOutputResponse documents a single extraction.
type ExtractionOutputResponse = service.ExtractionOutput

// BatchOutputResponse documents a batch extraction.
type BatchOutputResponse = service.BatchOutput

// ExtractionRecordResponse documents a stored extraction.
type ExtractionRecordResponse struct {
	ID              uuid.UUID      `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DocumentName    string         `json:"document_name" example:"bol-2025-08-26.json"`
	TemplateID      string         `json:"template_id" example:"acme-bol"`
	Outcome         domain.Outcome `json:"outcome" example:"matched"`
	MatchConfidence float64        `json:"match_confidence" example:"0.93"`
	Degraded        bool           `json:"degraded" example:"false"`
	Markdown        string         `json:"markdown"`
	OutputKey       string         `json:"output_key" example:"outputs/550e8400-e29b-41d4-a716-446655440000.md"`
	OutputURL       string         `json:"output_url,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// JobResponse documents a queued extraction job.
type JobResponse = domain.ExtractionJob

// TemplateSummaryResponse documents a catalog listing entry.
type TemplateSummaryResponse = service.TemplateSummary

// ReloadResponse documents a catalog reload.
type ReloadResponse = service.ReloadResult

// TokenResponse documents an issued access token.
type TokenResponse = service.IssuedToken
