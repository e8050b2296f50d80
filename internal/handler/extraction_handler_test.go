package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bolx/internal/domain"
	"bolx/internal/handler"
	"bolx/internal/service"
	"bolx/mocks"
)

func newExtractionHandler(maxBatch int) (*handler.ExtractionHandler, *mocks.MockExtractionService) {
	mockSvc := new(mocks.MockExtractionService)
	return handler.NewExtractionHandler(mockSvc, maxBatch), mockSvc
}

func layoutBody(t *testing.T, name string) []byte {
	t.Helper()
	body, err := json.Marshal(domain.SourceDocument{
		Name: name,
		Pages: []domain.RawPage{{
			Index: 0, Width: 600, Height: 800,
			Tokens: []domain.RawToken{{Text: "DATE", BBox: [4]float64{10, 10, 50, 20}, Confidence: 0.99}},
		}},
	})
	require.NoError(t, err)
	return body
}

func matchedOutput() *service.ExtractionOutput {
	return &service.ExtractionOutput{
		Result: domain.DocumentResult{
			SourceName:      "bol.json",
			Outcome:         domain.OutcomeMatched,
			TemplateID:      "acme-bol",
			MatchConfidence: 0.93,
		},
		Markdown: "## BOL Extraction Results\n\n**Template Used:** acme-bol\n",
	}
}

func postJSON(target string, body []byte) (*httptest.ResponseRecorder, *gin.Context) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

// --- Extract ---

func TestExtractionHandler_Extract_JSON(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)

	mockSvc.On("Extract", mock.Anything, mock.MatchedBy(func(doc domain.SourceDocument) bool {
		return doc.Name == "bol.json" && len(doc.Pages) == 1
	})).Return(matchedOutput(), nil)

	w, c := postJSON("/api/v1/extractions", layoutBody(t, "bol.json"))
	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	result := data["result"].(map[string]interface{})
	assert.Equal(t, "acme-bol", result["template_id"])
	mockSvc.AssertExpectations(t)
}

func TestExtractionHandler_Extract_DefaultName(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)

	mockSvc.On("Extract", mock.Anything, mock.MatchedBy(func(doc domain.SourceDocument) bool {
		return doc.Name == "upload"
	})).Return(matchedOutput(), nil)

	w, c := postJSON("/api/v1/extractions", layoutBody(t, ""))
	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestExtractionHandler_Extract_Markdown(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	mockSvc.On("Extract", mock.Anything, mock.Anything).Return(matchedOutput(), nil)

	w, c := postJSON("/api/v1/extractions?format=markdown", layoutBody(t, "bol.json"))
	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.True(t, strings.HasPrefix(w.Body.String(), "## BOL Extraction Results"))
}

func TestExtractionHandler_Extract_HTML(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	mockSvc.On("Extract", mock.Anything, mock.Anything).Return(matchedOutput(), nil)

	w, c := postJSON("/api/v1/extractions?format=html", layoutBody(t, "bol.json"))
	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h2>BOL Extraction Results</h2>")
}

func TestExtractionHandler_Extract_InvalidBody(t *testing.T) {
	h, _ := newExtractionHandler(10)

	w, c := postJSON("/api/v1/extractions", []byte(`{"pages": "nope"}`))
	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractionHandler_Extract_NoTemplates(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	mockSvc.On("Extract", mock.Anything, mock.Anything).Return(nil, domain.ErrNoTemplates)

	w, c := postJSON("/api/v1/extractions", layoutBody(t, "bol.json"))
	h.Extract(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "NO_TEMPLATES", resp.Error.Code)
}

// --- ExtractBatch ---

func batchBody(t *testing.T, n int) []byte {
	t.Helper()
	docs := make([]domain.SourceDocument, n)
	for i := range docs {
		docs[i] = domain.SourceDocument{Pages: []domain.RawPage{{Width: 600, Height: 800}}}
	}
	body, err := json.Marshal(handler.BatchRequest{Documents: docs})
	require.NoError(t, err)
	return body
}

func batchOutput() *service.BatchOutput {
	return &service.BatchOutput{
		Results: []domain.DocumentResult{matchedOutput().Result},
		Summary: domain.BatchSummary{Total: 1, Matched: 1},
	}
}

func TestExtractionHandler_ExtractBatch_Success(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)

	mockSvc.On("ExtractBatch", mock.Anything, mock.MatchedBy(func(docs []domain.SourceDocument) bool {
		return len(docs) == 2 && docs[0].Name == "document-1" && docs[1].Name == "document-2"
	})).Return(batchOutput(), nil)

	w, c := postJSON("/api/v1/extractions/batch", batchBody(t, 2))
	h.ExtractBatch(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestExtractionHandler_ExtractBatch_TooLarge(t *testing.T) {
	h, mockSvc := newExtractionHandler(1)

	w, c := postJSON("/api/v1/extractions/batch", batchBody(t, 2))
	h.ExtractBatch(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BATCH_TOO_LARGE")
	mockSvc.AssertNotCalled(t, "ExtractBatch", mock.Anything, mock.Anything)
}

func TestExtractionHandler_ExtractBatch_Empty(t *testing.T) {
	h, _ := newExtractionHandler(10)

	w, c := postJSON("/api/v1/extractions/batch", []byte(`{"documents": []}`))
	h.ExtractBatch(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractionHandler_ExtractBatch_CSV(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	mockSvc.On("ExtractBatch", mock.Anything, mock.Anything).Return(batchOutput(), nil)

	w, c := postJSON("/api/v1/extractions/batch?format=csv&name=August+BOLs", batchBody(t, 1))
	h.ExtractBatch(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "August_BOLs_")
	assert.Contains(t, w.Body.String(), "filename,outcome,template,confidence,degraded,result")
	assert.Contains(t, w.Body.String(), "acme-bol")
}

func TestExtractionHandler_ExtractBatch_XLSX(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	mockSvc.On("ExtractBatch", mock.Anything, mock.Anything).Return(batchOutput(), nil)

	w, c := postJSON("/api/v1/extractions/batch?format=xlsx", batchBody(t, 1))
	h.ExtractBatch(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

// --- GetByID / Preview / List ---

func TestExtractionHandler_GetByID_InvalidID(t *testing.T) {
	h, _ := newExtractionHandler(10)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractionHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	id := uuid.New()
	mockSvc.On("GetResult", mock.Anything, id).Return(nil, domain.ErrResultNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RESULT_NOT_FOUND")
}

func TestExtractionHandler_Preview(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	id := uuid.New()
	mockSvc.On("GetResult", mock.Anything, id).Return(&domain.ExtractionRecord{
		ID:       id,
		Markdown: "### DATE\n\n| A | B |\n| --- | --- |\n| 1 | 2 |\n",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions/"+id.String()+"/preview", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<table>")
	assert.Contains(t, w.Body.String(), "<h3>DATE</h3>")
}

func TestExtractionHandler_List(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	records := []domain.ExtractionRecord{{ID: uuid.New(), DocumentName: "a.json"}}
	mockSvc.On("ListResults", mock.Anything, 0, 5).Return(records, 12, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions?limit=5", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 12, resp.Meta.Total)
	assert.Equal(t, 5, resp.Meta.Limit)
}

func TestExtractionHandler_List_Error(t *testing.T) {
	h, mockSvc := newExtractionHandler(10)
	mockSvc.On("ListResults", mock.Anything, 0, 20).Return(nil, 0, errors.New("db down"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/extractions", nil)

	h.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
