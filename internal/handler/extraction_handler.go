package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bolx/internal/assembler"
	"bolx/internal/csvexport"
	"bolx/internal/domain"
	"bolx/internal/service"
	"bolx/internal/xlsxexport"
)

const (
	contentTypeMarkdown = "text/markdown; charset=utf-8"
	contentTypeHTML     = "text/html; charset=utf-8"
	contentTypeCSV      = "text/csv; charset=utf-8"
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExtractionHandler handles extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
	maxBatchItems     int
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService, maxBatchItems int) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService, maxBatchItems: maxBatchItems}
}

// Extract handles POST /api/v1/extractions
// @Summary Extract a document
// @Description Match a positioned-token layout against the template catalog and extract its regions
// @Tags extractions
// @Accept json
// @Produce json,text/markdown,text/html
// @Param format query string false "Response format: json (default), markdown or html"
// @Param request body domain.SourceDocument true "Document layout"
// @Success 200 {object} Response{data=ExtractionOutputResponse} "Extraction result"
// @Failure 400 {object} ErrorResponseBody "Invalid layout"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 503 {object} ErrorResponseBody "No templates loaded"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /extractions [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	var doc domain.SourceDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if strings.TrimSpace(doc.Name) == "" {
		doc.Name = "upload"
	}

	out, err := h.extractionService.Extract(c.Request.Context(), doc)
	if err != nil {
		HandleError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "markdown", "md":
		c.Data(http.StatusOK, contentTypeMarkdown, []byte(out.Markdown))
	case "html":
		html, err := assembler.RenderHTML(out.Markdown)
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, contentTypeHTML, []byte(html))
	default:
		RespondOK(c, out)
	}
}

// ExtractBatch handles POST /api/v1/extractions/batch
// @Summary Extract a batch of documents
// @Description Process documents concurrently; results keep the input order. format=csv or xlsx returns a download.
// @Tags extractions
// @Accept json
// @Produce json,text/csv
// @Param format query string false "Response format: json (default), csv or xlsx"
// @Param request body BatchRequest true "Documents"
// @Success 200 {object} Response{data=BatchOutputResponse} "Batch results and summary"
// @Failure 400 {object} ErrorResponseBody "Invalid request or batch too large"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 503 {object} ErrorResponseBody "No templates loaded"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /extractions/batch [post]
func (h *ExtractionHandler) ExtractBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if len(req.Documents) == 0 {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "documents must not be empty")
		return
	}
	if h.maxBatchItems > 0 && len(req.Documents) > h.maxBatchItems {
		RespondError(c, http.StatusBadRequest, "BATCH_TOO_LARGE",
			fmt.Sprintf("batch exceeds %d documents", h.maxBatchItems))
		return
	}
	for i := range req.Documents {
		if strings.TrimSpace(req.Documents[i].Name) == "" {
			req.Documents[i].Name = fmt.Sprintf("document-%d", i+1)
		}
	}

	out, err := h.extractionService.ExtractBatch(c.Request.Context(), req.Documents)
	if err != nil {
		HandleError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "csv":
		var buf bytes.Buffer
		buf.Write(csvexport.BOM)
		w := csvexport.NewWriter(&buf)
		if err := w.WriteHeader(); err != nil {
			HandleError(c, err)
			return
		}
		if err := w.WriteResults(out.Results); err != nil {
			HandleError(c, err)
			return
		}
		w.Flush()
		if err := w.Error(); err != nil {
			HandleError(c, err)
			return
		}
		attachment(c, csvexport.BuildFilename(c.Query("name"), "csv"))
		c.Data(http.StatusOK, contentTypeCSV, buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := xlsxexport.Write(&buf, out.Results); err != nil {
			HandleError(c, err)
			return
		}
		attachment(c, csvexport.BuildFilename(c.Query("name"), "xlsx"))
		c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
	default:
		RespondOK(c, out)
	}
}

// GetByID handles GET /api/v1/extractions/:id
// @Summary Get extraction by ID
// @Tags extractions
// @Produce json
// @Param id path string true "Extraction ID (UUID)"
// @Success 200 {object} Response{data=ExtractionRecordResponse} "Stored extraction"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Extraction not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /extractions/{id} [get]
func (h *ExtractionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	rec, err := h.extractionService.GetResult(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rec)
}

// Preview handles GET /api/v1/extractions/:id/preview
// @Summary Preview extraction as HTML
// @Tags extractions
// @Produce html
// @Param id path string true "Extraction ID (UUID)"
// @Success 200 {string} string "Rendered HTML"
// @Failure 404 {object} ErrorResponseBody "Extraction not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /extractions/{id}/preview [get]
func (h *ExtractionHandler) Preview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	rec, err := h.extractionService.GetResult(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	html, err := assembler.RenderHTML(rec.Markdown)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, []byte(html))
}

// List handles GET /api/v1/extractions
// @Summary List extractions
// @Description List stored extractions, newest first
// @Tags extractions
// @Produce json
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} Response{data=[]ExtractionRecordResponse,meta=PagMeta} "Extractions"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /extractions [get]
func (h *ExtractionHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	records, total, err := h.extractionService.ListResults(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
