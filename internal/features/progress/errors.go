package progress

import "errors"

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrLectureNotFound = errors.New("lecture not found in course")
	ErrNotEnrolled     = errors.New("user is not enrolled in this course")
)
