package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/cache"
	"github.com/edumart/edumart-server-go/pkg/media"
	"github.com/edumart/edumart-server-go/pkg/middleware"
	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/request"
	"github.com/edumart/edumart-server-go/pkg/response"
	"github.com/edumart/edumart-server-go/pkg/types"
)

const catalogCacheTTL = 60 * time.Second

// Handler processes course HTTP requests.
type Handler struct {
	db          *gorm.DB
	logger      *slog.Logger
	mediaClient *media.Client
	cache       cache.Client
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, mediaClient *media.Client, cacheClient cache.Client) *Handler {
	return &Handler{
		db:          db,
		logger:      logger,
		mediaClient: mediaClient,
		cache:       cacheClient,
	}
}

type catalogPage struct {
	Courses    []Course            `json:"courses"`
	Pagination pagination.Metadata `json:"pagination"`
}

// courseView is the public detail shape: the course plus derived fields.
type courseView struct {
	Course
	AverageRating float64 `json:"averageRating"`
	EnrolledCount int64   `json:"enrolledCount"`
	IsEnrolled    bool    `json:"isEnrolled"`
}

// List returns the published course catalog.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)
	keyword := c.Query("filterKeyword")

	cacheKey := fmt.Sprintf("catalog:%d:%d:%s", params.Page, params.Limit, keyword)
	var cached catalogPage
	if err := cache.GetJSON(c.Request.Context(), h.cache, cacheKey, &cached); err == nil {
		response.Success(c, http.StatusOK, cached.Courses, "", cached.Pagination)
		return
	}

	courses, total, err := List(h.db, ListFilters{
		Keyword:       keyword,
		PublishedOnly: true,
	}, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	meta := pagination.MetadataFrom(total, params)

	if err := cache.SetJSON(c.Request.Context(), h.cache, cacheKey, catalogPage{Courses: courses, Pagination: meta}, catalogCacheTTL); err != nil {
		h.logger.Warn("failed to cache course catalog", slog.String("error", err.Error()))
	}

	response.Success(c, http.StatusOK, courses, "", meta)
}

// GetByID returns a course for a viewer. Non-enrolled viewers receive blank
// video URLs on every lecture that is not a free preview.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	course, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	userID, _ := middleware.GetUserID(c)

	enrolled := false
	if course.EducatorID == userID && userID != "" {
		enrolled = true
	} else {
		enrolled, err = IsEnrolled(h.db, course.ID, userID)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to check enrollment", err)
			return
		}
	}

	SanitizeForViewer(&course, enrolled)

	avg, err := AverageRating(h.db, course.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load ratings", err)
		return
	}

	var enrolledCount int64
	if err := h.db.Table("enrollments").Where("course_id = ?", course.ID).Count(&enrolledCount).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to count enrollments", err)
		return
	}

	response.Success(c, http.StatusOK, courseView{
		Course:        course,
		AverageRating: avg,
		EnrolledCount: enrolledCount,
		IsEnrolled:    enrolled,
	}, "", nil)
}

// ListMine returns the authenticated educator's courses.
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)

	courses, total, err := List(h.db, ListFilters{EducatorID: userID}, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", pagination.MetadataFrom(total, params))
}

// Create inserts a new course. The thumbnail is uploaded first; an upload
// failure aborts course creation.
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")

	price, err := types.NewMoneyFromString(c.DefaultPostForm("price", "0"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "price must be a decimal number", err)
		return
	}

	discount := 0
	if raw := c.PostForm("discount"); raw != "" {
		discount, err = strconv.Atoi(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "discount must be an integer", err)
			return
		}
	}

	var published *bool
	if raw := c.PostForm("isPublished"); raw != "" {
		value := raw == "true"
		published = &value
	}

	file, fileHeader, err := c.Request.FormFile("thumbnail")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Thumbnail image is required.", err)
		return
	}
	defer file.Close()

	thumbnailURL, err := h.mediaClient.UploadImage(c.Request.Context(), file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to upload thumbnail.", err)
		return
	}

	course, err := Create(h.db, CreateInput{
		EducatorID:   userID,
		Title:        title,
		Description:  description,
		Price:        price,
		Discount:     discount,
		Published:    published,
		ThumbnailURL: thumbnailURL,
	})
	if err != nil {
		h.respondError(c, err, "failed to create course")
		return
	}

	response.Created(c, course, "")
}

// Update modifies an existing course.
func (h *Handler) Update(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	input := UpdateInput{}

	if value, ok := body["title"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "title must be a string", err)
			return
		}
		input.Title = &str
	}

	if value, ok := body["description"]; ok {
		input.DescriptionProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "description must be a string", err)
				return
			}
			input.Description = str
		}
	}

	if value, ok := body["price"]; ok {
		num, err := request.ReadFloat(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "price must be a number", err)
			return
		}
		price := types.NewMoney(num)
		input.Price = &price
	}

	if value, ok := body["discount"]; ok {
		num, err := request.ReadInt(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "discount must be an integer", err)
			return
		}
		input.Discount = &num
	}

	if value, ok := body["isPublished"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isPublished must be boolean", err)
			return
		}
		input.Published = &val
	}

	course, err := Update(h.db, id, userID, input)
	if err != nil {
		h.respondError(c, err, "failed to update course")
		return
	}

	response.Success(c, http.StatusOK, course, "", nil)
}

// Delete removes a course with its chapters and lectures.
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	if err := Delete(h.db, id, userID); err != nil {
		h.respondError(c, err, "failed to delete course")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

// UpdateThumbnail uploads a replacement thumbnail and swaps the URL. The old
// image is removed in the background.
func (h *Handler) UpdateThumbnail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	course, err := GetOwned(h.db, id, userID)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	file, fileHeader, err := c.Request.FormFile("thumbnail")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Thumbnail image is required.", err)
		return
	}
	defer file.Close()

	thumbnailURL, err := h.mediaClient.UploadImage(c.Request.Context(), file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to upload thumbnail.", err)
		return
	}

	oldURL := course.ThumbnailURL

	course, err = Update(h.db, id, userID, UpdateInput{
		ThumbnailURLProvided: true,
		ThumbnailURL:         thumbnailURL,
	})
	if err != nil {
		h.respondError(c, err, "failed to update thumbnail")
		return
	}

	if oldURL != "" {
		go func(url string) {
			if err := h.mediaClient.DeleteImage(context.WithoutCancel(c.Request.Context()), url); err != nil {
				h.logger.Warn("failed to delete old thumbnail", slog.String("url", url), slog.String("error", err.Error()))
			}
		}(oldURL)
	}

	response.Success(c, http.StatusOK, course, "", nil)
}

// AddChapter appends a chapter to an owned course.
func (h *Handler) AddChapter(c *gin.Context) {
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
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid chapter payload", err)
		return
	}

	chapter, err := AddChapter(h.db, courseID, userID, req.Title)
	if err != nil {
		h.respondError(c, err, "failed to add chapter")
		return
	}

	response.Created(c, chapter, "")
}

// AddLecture appends a lecture to a chapter of an owned course.
func (h *Handler) AddLecture(c *gin.Context) {
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

	chapterID, err := uuid.Parse(c.Param("chapterId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid chapter id", err)
		return
	}

	var req struct {
		Title           string `json:"title" binding:"required"`
		DurationMinutes int    `json:"durationMinutes"`
		LectureURL      string `json:"lectureUrl" binding:"required"`
		IsPreviewFree   bool   `json:"isPreviewFree"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lecture payload", err)
		return
	}

	lecture, err := AddLecture(h.db, courseID, chapterID, userID, LectureInput{
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		VideoURL:        req.LectureURL,
		IsPreviewFree:   req.IsPreviewFree,
	})
	if err != nil {
		h.respondError(c, err, "failed to add lecture")
		return
	}

	response.Created(c, lecture, "")
}

// DeleteLecture removes a lecture from a chapter of an owned course.
func (h *Handler) DeleteLecture(c *gin.Context) {
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

	chapterID, err := uuid.Parse(c.Param("chapterId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid chapter id", err)
		return
	}

	lectureID, err := uuid.Parse(c.Param("lectureId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lecture id", err)
		return
	}

	if err := DeleteLecture(h.db, courseID, chapterID, lectureID, userID); err != nil {
		h.respondError(c, err, "failed to delete lecture")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

// ReorderChapters overwrites chapter order values on an owned course.
func (h *Handler) ReorderChapters(c *gin.Context) {
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
		Chapters []OrderUpdate `json:"chapters" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid reorder payload", err)
		return
	}

	if err := ReorderChapters(h.db, courseID, userID, req.Chapters); err != nil {
		h.respondError(c, err, "failed to reorder chapters")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

// ReorderLectures overwrites lecture order values within a chapter.
func (h *Handler) ReorderLectures(c *gin.Context) {
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

	chapterID, err := uuid.Parse(c.Param("chapterId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid chapter id", err)
		return
	}

	var req struct {
		Lectures []OrderUpdate `json:"lectures" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid reorder payload", err)
		return
	}

	if err := ReorderLectures(h.db, courseID, chapterID, userID, req.Lectures); err != nil {
		h.respondError(c, err, "failed to reorder lectures")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrChapterNotFound):
		status = http.StatusNotFound
		message = "Chapter not found."
	case errors.Is(err, ErrLectureNotFound):
		status = http.StatusNotFound
		message = "Lecture not found."
	case errors.Is(err, ErrNotCourseEducator):
		status = http.StatusForbidden
		message = "Unauthorized: you are not the educator of this course."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Title is required."
	case errors.Is(err, ErrInvalidDiscount):
		status = http.StatusBadRequest
		message = "Discount must be between 0 and 100."
	case errors.Is(err, ErrInvalidPrice):
		status = http.StatusBadRequest
		message = "Price must not be negative."
	case errors.Is(err, ErrInvalidVideoURL):
		status = http.StatusBadRequest
		message = "Lecture URL must point at an allowed video host (YouTube or Vimeo)."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
