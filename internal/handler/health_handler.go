package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// CatalogSizer reports how many templates are loaded.
type CatalogSizer interface {
	Len() int
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db      *sqlx.DB
	catalog CatalogSizer
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the
// server runs without a database.
func NewHealthHandler(db *sqlx.DB, catalog CatalogSizer) *HealthHandler {
	return &HealthHandler{db: db, catalog: catalog}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}
	if h.catalog != nil && h.catalog.Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no templates loaded"})
		return
	}
	templates := 0
	if h.catalog != nil {
		templates = h.catalog.Len()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "templates": templates})
}
