package course

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts public catalog routes and the educator content
// management routes.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, optionalAuth gin.HandlerFunc, auth gin.HandlerFunc, requireEducator gin.HandlerFunc) {
	public := router.Group("/courses")
	{
		public.GET("", handler.List)
		public.GET("/:courseId", optionalAuth, handler.GetByID)
	}

	educator := router.Group("/educator/courses", auth, requireEducator)
	{
		educator.GET("", handler.ListMine)
		educator.POST("", handler.Create)
		educator.PUT("/:courseId", handler.Update)
		educator.DELETE("/:courseId", handler.Delete)
		educator.PUT("/:courseId/thumbnail", handler.UpdateThumbnail)

		educator.POST("/:courseId/chapters", handler.AddChapter)
		educator.PUT("/:courseId/chapters/reorder", handler.ReorderChapters)
		educator.POST("/:courseId/chapters/:chapterId/lectures", handler.AddLecture)
		educator.PUT("/:courseId/chapters/:chapterId/lectures/reorder", handler.ReorderLectures)
		educator.DELETE("/:courseId/chapters/:chapterId/lectures/:lectureId", handler.DeleteLecture)
	}
}
