package enrollment

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts enrollment routes. All of them require auth.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := router.Group("/enrollments", auth)
	{
		group.GET("", handler.ListEnrolled)
	}

	router.POST("/courses/:courseId/rating", auth, handler.RateCourse)
}
