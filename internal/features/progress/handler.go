package progress

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/middleware"
	"github.com/edumart/edumart-server-go/pkg/response"
)

// Handler processes course progress HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// MarkComplete flags a lecture as completed for the authenticated user.
func (h *Handler) MarkComplete(c *gin.Context) {
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
		LectureID string `json:"lectureId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid progress payload", err)
		return
	}

	lectureID, err := uuid.Parse(req.LectureID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lecture id", err)
		return
	}

	record, alreadyCompleted, err := MarkComplete(h.db, userID, courseID, lectureID)
	if err != nil {
		h.respondError(c, err, "failed to update progress")
		return
	}

	message := "Progress updated."
	if alreadyCompleted {
		message = "Lecture already completed."
	}

	response.Success(c, http.StatusOK, record, message, nil)
}

// Get returns the user's progress for a course, zero-valued when the user
// has not completed anything yet.
func (h *Handler) Get(c *gin.Context) {
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

	record, err := GetProgress(h.db, userID, courseID)
	if err != nil {
		h.respondError(c, err, "failed to load progress")
		return
	}

	response.Success(c, http.StatusOK, record, "", nil)
}

// Reset wipes the user's progress for a course.
func (h *Handler) Reset(c *gin.Context) {
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

	if err := Reset(h.db, userID, courseID); err != nil {
		h.respondError(c, err, "failed to reset progress")
		return
	}

	response.Success(c, http.StatusOK, true, "Progress reset.", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrLectureNotFound):
		status = http.StatusNotFound
		message = "Lecture not found in this course."
	case errors.Is(err, ErrNotEnrolled):
		status = http.StatusForbidden
		message = "You must be enrolled in the course to track progress."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
