package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bolx/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var noMatch *domain.NoTemplateMatchError
	var malformed *domain.MalformedTemplateError
	switch {
	case errors.As(err, &noMatch):
		return http.StatusUnprocessableEntity, "NO_TEMPLATE_MATCH", noMatch.Error()
	case errors.As(err, &malformed):
		return http.StatusBadRequest, "MALFORMED_TEMPLATE", malformed.Error()
	case errors.Is(err, domain.ErrMalformedTemplate):
		return http.StatusBadRequest, "MALFORMED_TEMPLATE", "template could not be decoded"
	case errors.Is(err, domain.ErrInvalidLayout):
		return http.StatusBadRequest, "INVALID_LAYOUT", "document layout is invalid"
	case errors.Is(err, domain.ErrNoTemplates):
		return http.StatusServiceUnavailable, "NO_TEMPLATES", "no templates are loaded"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "TEMPLATE_NOT_FOUND", "template not found"
	case errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound, "RESULT_NOT_FOUND", "extraction result not found"
	case errors.Is(err, domain.ErrDocumentTimeout):
		return http.StatusGatewayTimeout, "DOCUMENT_TIMEOUT", "document processing timed out"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "upload to storage failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// parsePagination reads offset and limit query parameters. limit is capped
// at 100 and defaults to 20.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
