package enrollment

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// These tests exercise the upsert clauses against a real database. Set
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
		&Enrollment{}, &Rating{},
	))

	return db
}

func seedCourse(t *testing.T, db *gorm.DB) course.Course {
	t.Helper()

	record := course.Course{
		EducatorID: "educator-" + uuid.NewString(),
		Title:      "Enrollment Test Course",
		Price:      types.NewMoney(19.99),
		Published:  true,
	}
	require.NoError(t, db.Create(&record).Error)

	t.Cleanup(func() {
		db.Where("course_id = ?", record.ID).Delete(&Rating{})
		db.Where("id = ?", record.ID).Delete(&course.Course{})
	})

	return record
}

func TestEnrollTwiceKeepsOneRow(t *testing.T) {
	db := openTestDB(t)

	seeded := seedCourse(t, db)
	userID := "student-" + uuid.NewString()

	require.NoError(t, Enroll(db, userID, seeded.ID))
	require.NoError(t, Enroll(db, userID, seeded.ID))

	var count int64
	require.NoError(t, db.Model(&Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, seeded.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestOutOfRangeRatingWritesNothing(t *testing.T) {
	db := openTestDB(t)

	seeded := seedCourse(t, db)
	userID := "student-" + uuid.NewString()
	require.NoError(t, Enroll(db, userID, seeded.ID))

	for _, value := range []int{0, 6, -1} {
		_, err := AddOrUpdateRating(db, userID, seeded.ID, value)
		require.ErrorIs(t, err, ErrInvalidRating)
	}

	var count int64
	require.NoError(t, db.Model(&Rating{}).
		Where("user_id = ? AND course_id = ?", userID, seeded.ID).
		Count(&count).Error)
	require.Zero(t, count)
}

func TestRatingUpsertOverwrites(t *testing.T) {
	db := openTestDB(t)

	seeded := seedCourse(t, db)
	userID := "student-" + uuid.NewString()
	require.NoError(t, Enroll(db, userID, seeded.ID))

	first, err := AddOrUpdateRating(db, userID, seeded.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, first.Value)

	second, err := AddOrUpdateRating(db, userID, seeded.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, second.Value)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&Rating{}).
		Where("user_id = ? AND course_id = ?", userID, seeded.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}
