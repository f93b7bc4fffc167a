package dashboard

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

// Handler processes educator dashboard HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// GetSummary returns the educator's sales and enrollment overview.
func (h *Handler) GetSummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	summary, err := GetSummary(h.db, userID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to build dashboard", err)
		return
	}

	response.Success(c, http.StatusOK, summary, "", nil)
}

// ListCourseStudents returns the students enrolled in one owned course.
func (h *Handler) ListCourseStudents(c *gin.Context) {
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

	params := pagination.Extract(c)

	students, total, err := ListCourseStudents(h.db, userID, courseID, params)
	if err != nil {
		h.respondError(c, err, "failed to list students")
		return
	}

	response.Success(c, http.StatusOK, students, "", pagination.MetadataFrom(total, params))
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrNotCourseEducator):
		status = http.StatusForbidden
		message = "Unauthorized: you are not the educator of this course."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
