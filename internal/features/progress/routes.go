package progress

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts progress routes. All of them require auth.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := router.Group("/courses/:courseId/progress", auth)
	{
		group.GET("", handler.Get)
		group.POST("/complete", handler.MarkComplete)
		group.DELETE("", handler.Reset)
	}
}
