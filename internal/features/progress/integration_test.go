package progress

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// These tests exercise the conditional SQL against a real database. Set
// EDUMART_TEST_DATABASE_URL to a scratch Postgres DSN to run them.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("EDUMART_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("EDUMART_TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error)
	require.NoError(t, db.AutoMigrate(
		&course.Course{}, &course.Chapter{}, &course.Lecture{},
		&enrollment.Enrollment{}, &Progress{},
	))

	return db
}

func seedCourse(t *testing.T, db *gorm.DB, lectureCount int) (course.Course, []course.Lecture) {
	t.Helper()

	lectures := make([]course.Lecture, 0, lectureCount)
	for i := 0; i < lectureCount; i++ {
		lectures = append(lectures, course.Lecture{
			Title:    fmt.Sprintf("Lecture %d", i+1),
			VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Order:    i + 1,
		})
	}

	record := course.Course{
		EducatorID: "educator-" + uuid.NewString(),
		Title:      "Progress Test Course",
		Price:      types.NewMoney(49.99),
		Published:  true,
		Chapters: []course.Chapter{
			{Title: "Chapter 1", Order: 1, Lectures: lectures},
		},
	}
	require.NoError(t, db.Create(&record).Error)

	t.Cleanup(func() {
		db.Where("course_id = ?", record.ID).Delete(&Progress{})
		db.Where("id = ?", record.ID).Delete(&course.Course{})
	})

	return record, record.Chapters[0].Lectures
}

func TestMarkCompleteRepeatDoesNotMutate(t *testing.T) {
	db := openTestDB(t)

	seeded, lectures := seedCourse(t, db, 2)
	userID := "student-" + uuid.NewString()
	require.NoError(t, enrollment.Enroll(db, userID, seeded.ID))

	first, alreadyCompleted, err := MarkComplete(db, userID, seeded.ID, lectures[0].ID)
	require.NoError(t, err)
	require.False(t, alreadyCompleted)
	require.Len(t, first.CompletedLectures, 1)
	require.Equal(t, 50, first.CompletedPercent)

	var before Progress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, seeded.ID).First(&before).Error)

	second, alreadyCompleted, err := MarkComplete(db, userID, seeded.ID, lectures[0].ID)
	require.NoError(t, err)
	require.True(t, alreadyCompleted)
	require.Len(t, second.CompletedLectures, 1)

	var after Progress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, seeded.ID).First(&after).Error)
	require.True(t, after.UpdatedAt.Equal(before.UpdatedAt))
	require.True(t, after.LastAccessed.Equal(before.LastAccessed))
	require.Equal(t, before.CompletedLectures, after.CompletedLectures)

	third, alreadyCompleted, err := MarkComplete(db, userID, seeded.ID, lectures[1].ID)
	require.NoError(t, err)
	require.False(t, alreadyCompleted)
	require.Len(t, third.CompletedLectures, 2)
	require.Equal(t, 100, third.CompletedPercent)
}

func TestResetKeepsRecord(t *testing.T) {
	db := openTestDB(t)

	seeded, lectures := seedCourse(t, db, 1)
	userID := "student-" + uuid.NewString()
	require.NoError(t, enrollment.Enroll(db, userID, seeded.ID))

	marked, _, err := MarkComplete(db, userID, seeded.ID, lectures[0].ID)
	require.NoError(t, err)
	require.Equal(t, 100, marked.CompletedPercent)

	require.NoError(t, Reset(db, userID, seeded.ID))

	var record Progress
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", userID, seeded.ID).First(&record).Error)
	require.Equal(t, marked.ID, record.ID)
	require.True(t, record.CreatedAt.Equal(marked.CreatedAt))
	require.Empty(t, record.CompletedLectures)
	require.Zero(t, record.CompletedPercent)
}
