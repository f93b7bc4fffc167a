package enrollment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/middleware"
	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/response"
)

// Handler processes enrollment and rating HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// ListEnrolled returns the authenticated user's enrolled courses.
func (h *Handler) ListEnrolled(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)

	courses, total, err := ListEnrolledCourses(h.db, userID, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list enrolled courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", pagination.MetadataFrom(total, params))
}

// RateCourse records or replaces the user's rating for a course.
func (h *Handler) RateCourse(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	var req struct {
		Rating int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid rating payload", err)
		return
	}

	rating, err := AddOrUpdateRating(h.db, userID, courseID, req.Rating)
	if err != nil {
		h.respondError(c, err, "failed to save rating")
		return
	}

	response.Success(c, http.StatusOK, rating, "Rating saved.", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrNotEnrolled):
		status = http.StatusForbidden
		message = "You must be enrolled in the course to rate it."
	case errors.Is(err, ErrInvalidRating):
		status = http.StatusBadRequest
		message = "Rating must be between 1 and 5."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
