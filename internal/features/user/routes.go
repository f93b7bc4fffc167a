package user

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts user routes and the unauthenticated identity webhook
// endpoint. The webhook authenticates via its signature headers.
func RegisterRoutes(router *gin.RouterGroup, webhooks *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := router.Group("/users", auth)
	{
		group.GET("/me", handler.GetProfile)
		group.POST("/me/role", handler.UpdateRole)
	}

	webhooks.POST("/identity", handler.IdentityWebhook)
}
