package routes

import (
	"storefront-service/controllers"
	"storefront-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all application routes. The admin and API-key
// transfer surfaces share the same controller; only the transport
// authorization differs.
func RegisterRoutes(r *gin.Engine, transferController *controllers.TransferController, catalogController *controllers.CatalogController, apiKey string) {
	admin := r.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		admin.POST("/transfers", transferController.CreateTransfer)
		admin.GET("/transfers/jobs/:id", transferController.GetTransferJob)
	}

	api := r.Group("/api/v1", middleware.APIKeyMiddleware(apiKey))
	{
		api.POST("/transfers", transferController.CreateTransfer)
		api.GET("/transfers/jobs/:id", transferController.GetTransferJob)
	}

	r.GET("/storefront/:slug", catalogController.GetStorefront)
}
