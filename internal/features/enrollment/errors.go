package enrollment

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrNotEnrolled    = errors.New("user is not enrolled in this course")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)
