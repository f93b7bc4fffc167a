package progress

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Progress tracks which lectures of a course a user has completed. One row
// per user per course; the completed set lives in a Postgres text array so
// marking a lecture is a single conditional append.
type Progress struct {
	types.BaseModel
	UserID            string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_progress_user_course" json:"userId"`
	CourseID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_course" json:"courseId"`
	CompletedLectures pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"completedLectures"`
	CompletedPercent  int            `gorm:"not null;default:0" json:"completedPercent"`
	LastAccessed      time.Time      `json:"lastAccessed"`
}

func (Progress) TableName() string {
	return "progress"
}

// MarkComplete records a lecture as completed for the user. Repeating the
// call for the same lecture changes nothing, not even timestamps, and is
// reported via alreadyCompleted. Concurrent calls for different lectures
// each land exactly once because the append is guarded by a membership check
// inside the same UPDATE.
func MarkComplete(db *gorm.DB, userID string, courseID, lectureID uuid.UUID) (record Progress, alreadyCompleted bool, err error) {
	if err := ensureCourseExists(db, courseID); err != nil {
		return Progress{}, false, err
	}

	lectureIDs, err := course.LectureIDs(db, courseID)
	if err != nil {
		return Progress{}, false, err
	}

	if !containsID(lectureIDs, lectureID.String()) {
		return Progress{}, false, ErrLectureNotFound
	}

	enrolled, err := enrollment.IsEnrolled(db, userID, courseID)
	if err != nil {
		return Progress{}, false, err
	}
	if !enrolled {
		return Progress{}, false, ErrNotEnrolled
	}

	now := time.Now().UTC()

	var appended bool
	err = db.Transaction(func(tx *gorm.DB) error {
		seed := Progress{
			UserID:            userID,
			CourseID:          courseID,
			CompletedLectures: pq.StringArray{},
			LastAccessed:      now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		id := lectureID.String()

		result := tx.Exec(
			`UPDATE progress
			 SET completed_lectures = array_append(completed_lectures, ?),
			     updated_at = ?
			 WHERE user_id = ? AND course_id = ?
			   AND NOT (? = ANY(completed_lectures))`,
			id, now, userID, courseID, id,
		)
		if result.Error != nil {
			return result.Error
		}
		appended = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return Progress{}, false, err
	}

	if !appended {
		if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error; err != nil {
			return Progress{}, false, err
		}
		return record, true, nil
	}

	record, err = refreshPercent(db, userID, courseID, len(lectureIDs), now)
	return record, false, err
}

// GetProgress returns the user's progress for a course. Users with no
// progress row get a zero-valued record rather than an error. The percent is
// recomputed against the current lecture count so course edits are
// reflected.
func GetProgress(db *gorm.DB, userID string, courseID uuid.UUID) (Progress, error) {
	if err := ensureCourseExists(db, courseID); err != nil {
		return Progress{}, err
	}

	total, err := course.TotalLectures(db, courseID)
	if err != nil {
		return Progress{}, err
	}

	var record Progress
	err = db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Progress{
			UserID:            userID,
			CourseID:          courseID,
			CompletedLectures: pq.StringArray{},
			CompletedPercent:  0,
		}, nil
	}
	if err != nil {
		return Progress{}, err
	}

	percent := ComputePercent(len(record.CompletedLectures), int(total))
	if percent != record.CompletedPercent {
		if err := db.Model(&Progress{}).
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Update("completed_percent", percent).Error; err != nil {
			return Progress{}, err
		}
		record.CompletedPercent = percent
	}

	return record, nil
}

// Reset empties the user's completed set and zeroes the percentage. The row
// itself survives, keeping its identity and creation time.
func Reset(db *gorm.DB, userID string, courseID uuid.UUID) error {
	if err := ensureCourseExists(db, courseID); err != nil {
		return err
	}

	return db.Model(&Progress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{
			"completed_lectures": pq.StringArray{},
			"completed_percent":  0,
			"last_accessed":      time.Now().UTC(),
		}).Error
}

func ensureCourseExists(db *gorm.DB, courseID uuid.UUID) error {
	var exists int64
	if err := db.Model(&course.Course{}).Where("id = ?", courseID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// IsLectureCompleted reports whether the lecture id is in the completed set.
func IsLectureCompleted(record Progress, lectureID uuid.UUID) bool {
	id := lectureID.String()
	for _, completed := range record.CompletedLectures {
		if completed == id {
			return true
		}
	}
	return false
}

// ComputePercent converts a completed count into a whole-number percentage.
// A course with no lectures reports 0 rather than dividing by zero.
func ComputePercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

func refreshPercent(db *gorm.DB, userID string, courseID uuid.UUID, total int, accessed time.Time) (Progress, error) {
	var record Progress
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error; err != nil {
		return Progress{}, err
	}

	percent := ComputePercent(len(record.CompletedLectures), total)

	err := db.Model(&Progress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{
			"completed_percent": percent,
			"last_accessed":     accessed,
		}).Error
	if err != nil {
		return Progress{}, err
	}

	record.CompletedPercent = percent
	record.LastAccessed = accessed

	return record, nil
}

func containsID(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
