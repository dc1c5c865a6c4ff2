package routers

import (
	"github.com/gin-gonic/gin"

	"olp/backend/internal/server/handlers/ops"
	"olp/backend/internal/server/handlers/webhook"
	"olp/backend/internal/server/middlewares"
	"olp/backend/pkg/logger"
)

// SetupRoutes wires all routes of the API server.
func SetupRoutes(
	webhookHandler *webhook.Handler,
	opsHandler *ops.Handler,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLog(log))
	r.Use(middlewares.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "ledgersync-api",
		})
	})

	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/orders-paid", webhookHandler.OrdersPaid)
	}

	opsGroup := r.Group("/ops")
	{
		opsGroup.GET("/queue", opsHandler.QueueStatus)
		opsGroup.GET("/queue/:orderID", opsHandler.GetEntry)
		opsGroup.POST("/queue/:orderID/requeue", opsHandler.Requeue)
		opsGroup.POST("/enqueue", opsHandler.Enqueue)
		opsGroup.POST("/backfill", opsHandler.Backfill)
		opsGroup.POST("/sync", opsHandler.Sync)

		mirror := opsGroup.Group("/mirror")
		{
			mirror.GET("/sales", opsHandler.MirrorSales)
			mirror.GET("/contacts", opsHandler.MirrorContacts)
			mirror.GET("/accounts", opsHandler.MirrorAccounts)
		}
	}

	return r
}
