package purchase

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts purchase routes plus the unauthenticated payment
// webhook endpoint. The webhook authenticates via its signature header, not
// a bearer token.
func RegisterRoutes(router *gin.RouterGroup, webhooks *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := router.Group("/purchases", auth)
	{
		group.POST("", handler.Initiate)
		group.GET("", handler.List)
	}

	webhooks.POST("/payments", handler.PaymentWebhook)
}
