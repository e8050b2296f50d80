package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidLayout     = errors.New("invalid document layout")
	ErrNoTemplates       = errors.New("no templates available")
	ErrNoTemplateMatch   = errors.New("no template matched the document")
	ErrMalformedTemplate = errors.New("malformed template")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrResultNotFound    = errors.New("extraction result not found")
	ErrDocumentTimeout   = errors.New("document processing timed out")
	ErrUploadFailed      = errors.New("upload to storage failed")
)

// NoTemplateMatchError reports the best candidate that still fell below the
// confidence threshold.
type NoTemplateMatchError struct {
	BestTemplate   string
	BestConfidence float64
	Threshold      float64
}

func (e *NoTemplateMatchError) Error() string {
	if e.BestTemplate == "" {
		return fmt.Sprintf("no suitable template found (threshold %.2f)", e.Threshold)
	}
	return fmt.Sprintf("no suitable template found (best match: %s with confidence %.2f, threshold %.2f)",
		e.BestTemplate, e.BestConfidence, e.Threshold)
}

func (e *NoTemplateMatchError) Unwrap() error {
	return ErrNoTemplateMatch
}

// MalformedTemplateError lists every schema problem found in one template.
type MalformedTemplateError struct {
	TemplateID string
	Problems   []string
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("template %q is malformed: %s", e.TemplateID, strings.Join(e.Problems, "; "))
}

func (e *MalformedTemplateError) Unwrap() error {
	return ErrMalformedTemplate
}
