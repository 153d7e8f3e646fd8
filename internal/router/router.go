package router

import (
	"github.com/gin-gonic/gin"

	"facturo/internal/handler"
	"facturo/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	invoiceH *handler.InvoiceHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Invoice routes
	invoices := v1.Group("/invoices")
	invoices.POST("/upload", invoiceH.Upload)
	invoices.POST("/upload/batch", invoiceH.UploadBatch)
	invoices.POST("/:id/process", invoiceH.Process)
	invoices.GET("/:id/status", invoiceH.Status)
	invoices.GET("", invoiceH.List)

	// Export routes
	v1.POST("/export", exportH.Export)

	return r
}
