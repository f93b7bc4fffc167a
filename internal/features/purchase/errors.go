package purchase

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrAlreadyEnrolled  = errors.New("user is already enrolled in this course")
	ErrCourseNotForSale = errors.New("course is not published")
)
