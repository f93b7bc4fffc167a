package enrollment

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Enrollment links a user to a course they have access to. The pair is
// unique, so re-enrolling is a no-op at the database level.
type Enrollment struct {
	types.BaseModel
	UserID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_enrollments_user_course" json:"userId"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"courseId"`

	Course *course.Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// Rating is a single user's score for a course, 1 through 5. One rating per
// user per course; submitting again overwrites.
type Rating struct {
	types.BaseModel
	UserID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_ratings_user_course" json:"userId"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_course" json:"courseId"`
	Value    int       `gorm:"not null" json:"value"`
}

func (Rating) TableName() string {
	return "ratings"
}

// Enroll grants a user access to a course. Calling it for an existing
// enrollment succeeds without creating a duplicate row.
func Enroll(db *gorm.DB, userID string, courseID uuid.UUID) error {
	record := Enrollment{UserID: userID, CourseID: courseID}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&record).Error
	if err != nil {
		return err
	}

	return nil
}

// IsEnrolled reports whether the user has an enrollment for the course.
func IsEnrolled(db *gorm.DB, userID string, courseID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListEnrolledCourses returns the user's enrolled courses, newest enrollment
// first, with course content preloaded.
func ListEnrolledCourses(db *gorm.DB, userID string, params pagination.Params) ([]course.Course, int64, error) {
	base := db.Model(&Enrollment{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []Enrollment
	err := db.Where("user_id = ?", userID).
		Preload("Course").
		Preload("Course.Chapters", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("\"order\" ASC")
		}).
		Preload("Course.Chapters.Lectures", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("\"order\" ASC")
		}).
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, err
	}

	courses := make([]course.Course, 0, len(enrollments))
	for _, record := range enrollments {
		if record.Course != nil {
			courses = append(courses, *record.Course)
		}
	}

	return courses, total, nil
}

// AddOrUpdateRating records a user's rating for a course. The user must be
// enrolled, and the value must fall in [1, 5].
func AddOrUpdateRating(db *gorm.DB, userID string, courseID uuid.UUID, value int) (Rating, error) {
	if !ValidRating(value) {
		return Rating{}, ErrInvalidRating
	}

	var exists int64
	if err := db.Model(&course.Course{}).Where("id = ?", courseID).Count(&exists).Error; err != nil {
		return Rating{}, err
	}
	if exists == 0 {
		return Rating{}, ErrCourseNotFound
	}

	enrolled, err := IsEnrolled(db, userID, courseID)
	if err != nil {
		return Rating{}, err
	}
	if !enrolled {
		return Rating{}, ErrNotEnrolled
	}

	rating := Rating{UserID: userID, CourseID: courseID, Value: value}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rating).Error
	if err != nil {
		return Rating{}, err
	}

	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Rating{}, ErrCourseNotFound
		}
		return Rating{}, err
	}

	return rating, nil
}

// GetUserRating returns the user's rating for a course if one exists.
func GetUserRating(db *gorm.DB, userID string, courseID uuid.UUID) (*Rating, error) {
	var rating Rating
	err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ValidRating reports whether a score is inside the accepted range.
func ValidRating(value int) bool {
	return value >= 1 && value <= 5
}

// Average computes the mean of rating values, 0 for an empty slice.
func Average(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
