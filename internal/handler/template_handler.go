package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bolx/internal/service"
)

// TemplateHandler handles template catalog endpoints.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// List handles GET /api/v1/templates
// @Summary List templates
// @Tags templates
// @Produce json
// @Success 200 {object} Response{data=[]TemplateSummaryResponse} "Loaded templates"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	RespondOK(c, h.templateService.List(c.Request.Context()))
}

// GetByID handles GET /api/v1/templates/:id
// @Summary Get template by ID
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} Response{data=domain.Template} "Template definition"
// @Failure 404 {object} ErrorResponseBody "Template not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetByID(c *gin.Context) {
	t, err := h.templateService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, t)
}

// Reload handles POST /api/v1/templates/reload
// @Summary Reload the template catalog
// @Description Re-read every template source. Malformed templates are skipped and reported.
// @Tags templates
// @Produce json
// @Success 200 {object} Response{data=ReloadResponse} "Reload report"
// @Failure 403 {object} ErrorResponseBody "Admin role required"
// @Failure 503 {object} ErrorResponseBody "No valid templates found"
// @Security BearerAuth
// @Router /templates/reload [post]
func (h *TemplateHandler) Reload(c *gin.Context) {
	res, err := h.templateService.Reload(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}

// Save handles POST /api/v1/templates
// @Summary Store a template
// @Description Accepts a native JSON or YAML template, or an authoring-tool JSON export
// @Tags templates
// @Accept json,application/yaml
// @Produce json
// @Param name query string false "Source file name; a .yaml or .yml suffix selects YAML"
// @Success 201 {object} Response{data=domain.Template} "Stored template"
// @Failure 400 {object} ErrorResponseBody "Malformed template"
// @Failure 403 {object} ErrorResponseBody "Admin role required"
// @Security BearerAuth
// @Router /templates [post]
func (h *TemplateHandler) Save(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "could not read request body")
		return
	}
	if len(data) == 0 {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "request body is empty")
		return
	}

	t, err := h.templateService.Save(c.Request.Context(), templateFileName(c), data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, t)
}

func templateFileName(c *gin.Context) string {
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		return name
	}
	if strings.Contains(c.ContentType(), "yaml") {
		return "template.yaml"
	}
	return "template.json"
}
