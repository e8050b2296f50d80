package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bolx/internal/service"
)

// JobHandler handles asynchronous extraction job endpoints.
type JobHandler struct {
	extractionService service.ExtractionService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(extractionService service.ExtractionService) *JobHandler {
	return &JobHandler{extractionService: extractionService}
}

// Enqueue handles POST /api/v1/jobs
// @Summary Enqueue an extraction job
// @Description Queue a layout stored in object storage for background extraction
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body EnqueueJobRequest true "Layout object key"
// @Success 201 {object} Response{data=JobResponse} "Job queued"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs [post]
func (h *JobHandler) Enqueue(c *gin.Context) {
	var req EnqueueJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.extractionService.EnqueueJob(c.Request.Context(), req.SourceKey)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, job)
}

// GetByID handles GET /api/v1/jobs/:id
// @Summary Get job status
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID (UUID)"
// @Success 200 {object} Response{data=JobResponse} "Job"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job ID")
		return
	}

	job, err := h.extractionService.GetJob(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, job)
}
