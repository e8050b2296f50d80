package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "bolx/docs"
	"bolx/internal/domain"
	"bolx/internal/handler"
	"bolx/internal/middleware"
	"bolx/internal/service"
)

// Options holds the HTTP settings the router needs from configuration.
type Options struct {
	AuthDisabled   bool
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	opts Options,
	authSvc service.AuthService,
	authH *handler.AuthHandler,
	extractionH *handler.ExtractionHandler,
	templateH *handler.TemplateHandler,
	jobH *handler.JobHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	if opts.AuthDisabled {
		v1.Use(middleware.NoAuth())
	} else {
		v1.Use(middleware.AuthMiddleware(authSvc))
	}
	admin := middleware.RequireRole(domain.RoleAdmin)

	extractions := v1.Group("/extractions")
	extractions.POST("", extractionH.Extract)
	extractions.POST("/batch", extractionH.ExtractBatch)
	extractions.GET("", extractionH.List)
	extractions.GET("/:id", extractionH.GetByID)
	extractions.GET("/:id/preview", extractionH.Preview)

	templates := v1.Group("/templates")
	templates.GET("", templateH.List)
	templates.GET("/:id", templateH.GetByID)
	templates.POST("", admin, templateH.Save)
	templates.POST("/reload", admin, templateH.Reload)

	jobs := v1.Group("/jobs")
	jobs.POST("", jobH.Enqueue)
	jobs.GET("/:id", jobH.GetByID)

	v1.POST("/tokens", admin, authH.IssueToken)

	return r
}
