package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bolx/internal/domain"
	"bolx/internal/handler"
	"bolx/mocks"
)

func TestJobHandler_Enqueue_Success(t *testing.T) {
	mockSvc := new(mocks.MockExtractionService)
	h := handler.NewJobHandler(mockSvc)

	job := &domain.ExtractionJob{ID: uuid.New(), SourceKey: "layouts/a.json", Status: domain.JobStatusQueued}
	mockSvc.On("EnqueueJob", mock.Anything, "layouts/a.json").Return(job, nil)

	w, c := postJSON("/api/v1/jobs", []byte(`{"source_key":"layouts/a.json"}`))
	h.Enqueue(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), job.ID.String())
	mockSvc.AssertExpectations(t)
}

func TestJobHandler_Enqueue_MissingKey(t *testing.T) {
	mockSvc := new(mocks.MockExtractionService)
	h := handler.NewJobHandler(mockSvc)

	w, c := postJSON("/api/v1/jobs", []byte(`{}`))
	h.Enqueue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobHandler_GetByID_NotFound(t *testing.T) {
	mockSvc := new(mocks.MockExtractionService)
	h := handler.NewJobHandler(mockSvc)
	id := uuid.New()
	mockSvc.On("GetJob", mock.Anything, id).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
