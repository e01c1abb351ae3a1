package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/quillbooks/invoicing_app/cmd/docs"
	portssvc "github.com/quillbooks/invoicing_app/internal/core/ports/services"
	"github.com/quillbooks/invoicing_app/internal/middleware"
	"github.com/quillbooks/invoicing_app/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	invoiceHandler := newInvoiceHandler(services.Invoice, services.Numbering)
	paymentHandler := newPaymentHandler(services.Payment, services.Receipt)

	// Add health check route
	r.GET("/health", getHealth)

	// Public invoice link, no auth: the opaque invoice ID is the capability.
	r.GET("/public/invoices/:invoiceID", invoiceHandler.getPublicInvoice)

	// Setup API v1 routes with Auth Middleware
	setupAPIV1Routes(r, cfg, invoiceHandler, paymentHandler)

	// Swagger routes (not exposed in production)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	invoiceHandler *invoiceHandler,
	paymentHandler *paymentHandler,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	account := v1.Group("/accounts/:accountID")
	registerInvoiceRoutes(account, invoiceHandler, paymentHandler)
	registerPaymentRoutes(account, paymentHandler)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
