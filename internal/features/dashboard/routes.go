package dashboard

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts educator dashboard routes.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, requireEducator gin.HandlerFunc) {
	group := router.Group("/educator/dashboard", auth, requireEducator)
	{
		group.GET("", handler.GetSummary)
		group.GET("/courses/:courseId/students", handler.ListCourseStudents)
	}
}
