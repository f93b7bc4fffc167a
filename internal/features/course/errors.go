package course

import "errors"

var (
	ErrCourseNotFound    = errors.New("course not found")
	ErrChapterNotFound   = errors.New("chapter not found")
	ErrLectureNotFound   = errors.New("lecture not found")
	ErrTitleRequired     = errors.New("course title is required")
	ErrInvalidDiscount   = errors.New("discount must be between 0 and 100")
	ErrInvalidPrice      = errors.New("course price must not be negative")
	ErrInvalidVideoURL   = errors.New("invalid lecture video url")
	ErrNotCourseEducator = errors.New("caller is not the course educator")
)
