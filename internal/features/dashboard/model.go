package dashboard

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/types"
)

var ErrCourseNotFound = errors.New("course not found")
var ErrNotCourseEducator = errors.New("user is not the educator of this course")

const latestEnrollmentLimit = 10

// Summary aggregates an educator's sales and enrollment activity.
type Summary struct {
	TotalEarnings     types.Money        `json:"totalEarnings"`
	TotalCourses      int64              `json:"totalCourses"`
	TotalStudents     int64              `json:"totalStudents"`
	LatestEnrollments []EnrollmentDigest `json:"latestEnrollments"`
}

// EnrollmentDigest is one row of recent enrollment activity.
type EnrollmentDigest struct {
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	CourseID    uuid.UUID `json:"courseId"`
	CourseTitle string    `json:"courseTitle"`
	EnrolledAt  time.Time `json:"enrolledAt"`
}

// StudentRow is one enrolled student of a specific course.
type StudentRow struct {
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	Email       string    `json:"email"`
	EnrolledAt  time.Time `json:"enrolledAt"`
}

// GetSummary computes the educator dashboard. Earnings only count completed
// purchases; pending and failed attempts are excluded.
func GetSummary(db *gorm.DB, educatorID string) (Summary, error) {
	summary := Summary{LatestEnrollments: []EnrollmentDigest{}}

	err := db.Model(&course.Course{}).
		Where("educator_id = ?", educatorID).
		Count(&summary.TotalCourses).Error
	if err != nil {
		return Summary{}, err
	}

	var earnings types.Money
	err = db.Table("purchases").
		Joins("JOIN courses ON courses.id = purchases.course_id").
		Where("courses.educator_id = ? AND purchases.status = ?", educatorID, types.PurchaseStatusCompleted).
		Select("COALESCE(SUM(purchases.amount), 0)").
		Scan(&earnings).Error
	if err != nil {
		return Summary{}, err
	}
	summary.TotalEarnings = earnings

	err = db.Table("enrollments").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.educator_id = ?", educatorID).
		Select("COUNT(DISTINCT enrollments.user_id)").
		Scan(&summary.TotalStudents).Error
	if err != nil {
		return Summary{}, err
	}

	err = db.Table("enrollments").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Joins("LEFT JOIN users ON users.id = enrollments.user_id").
		Where("courses.educator_id = ?", educatorID).
		Select(`enrollments.user_id AS student_id,
			COALESCE(users.full_name, '') AS student_name,
			courses.id AS course_id,
			courses.title AS course_title,
			enrollments.created_at AS enrolled_at`).
		Order("enrollments.created_at DESC").
		Limit(latestEnrollmentLimit).
		Scan(&summary.LatestEnrollments).Error
	if err != nil {
		return Summary{}, err
	}

	return summary, nil
}

// ListCourseStudents returns the students enrolled in one of the educator's
// courses, newest enrollment first.
func ListCourseStudents(db *gorm.DB, educatorID string, courseID uuid.UUID, params pagination.Params) ([]StudentRow, int64, error) {
	if _, err := course.GetOwned(db, courseID, educatorID); err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			return nil, 0, ErrCourseNotFound
		}
		if errors.Is(err, course.ErrNotCourseEducator) {
			return nil, 0, ErrNotCourseEducator
		}
		return nil, 0, err
	}

	base := db.Table("enrollments").Where("enrollments.course_id = ?", courseID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []StudentRow{}
	err := db.Table("enrollments").
		Joins("LEFT JOIN users ON users.id = enrollments.user_id").
		Where("enrollments.course_id = ?", courseID).
		Select(`enrollments.user_id AS student_id,
			COALESCE(users.full_name, '') AS student_name,
			COALESCE(users.email, '') AS email,
			enrollments.created_at AS enrolled_at`).
		Order("enrollments.created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
