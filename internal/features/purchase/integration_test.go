package purchase

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/user"
	"github.com/edumart/edumart-server-go/pkg/config"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// These tests exercise the settlement guard against a real database. Set
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
		&user.User{}, &course.Course{}, &course.Chapter{}, &course.Lecture{},
		&enrollment.Enrollment{}, &Purchase{},
	))

	return db
}

func seedCourse(t *testing.T, db *gorm.DB) course.Course {
	t.Helper()

	record := course.Course{
		EducatorID: "educator-" + uuid.NewString(),
		Title:      "Purchase Test Course",
		Price:      types.NewMoney(99.99),
		Discount:   20,
		Published:  true,
	}
	require.NoError(t, db.Create(&record).Error)

	t.Cleanup(func() {
		db.Where("id = ?", record.ID).Delete(&course.Course{})
	})

	return record
}

func TestCompleteSettlesExactlyOnce(t *testing.T) {
	db := openTestDB(t)

	seeded := seedCourse(t, db)
	userID := "buyer-" + uuid.NewString()

	pending := Purchase{
		UserID:   userID,
		CourseID: seeded.ID,
		Amount:   CheckoutAmount(seeded.Price, seeded.Discount),
		Currency: "USD",
		Status:   types.PurchaseStatusPending,
	}
	require.NoError(t, db.Create(&pending).Error)

	applied, err := Complete(db, pending.ID)
	require.NoError(t, err)
	require.True(t, applied)

	// Redelivered event: no state change, no second enrollment.
	applied, err = Complete(db, pending.ID)
	require.NoError(t, err)
	require.False(t, applied)

	var enrollments int64
	require.NoError(t, db.Model(&enrollment.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, seeded.ID).
		Count(&enrollments).Error)
	require.EqualValues(t, 1, enrollments)

	var stored Purchase
	require.NoError(t, db.Where("id = ?", pending.ID).First(&stored).Error)
	require.Equal(t, types.PurchaseStatusCompleted, stored.Status)

	// A late failure event cannot flip a completed purchase.
	applied, err = Fail(db, pending.ID)
	require.NoError(t, err)
	require.False(t, applied)

	require.NoError(t, db.Where("id = ?", pending.ID).First(&stored).Error)
	require.Equal(t, types.PurchaseStatusCompleted, stored.Status)
}

func TestFailLeavesNoEnrollment(t *testing.T) {
	db := openTestDB(t)

	seeded := seedCourse(t, db)
	userID := "buyer-" + uuid.NewString()

	pending := Purchase{
		UserID:   userID,
		CourseID: seeded.ID,
		Amount:   CheckoutAmount(seeded.Price, seeded.Discount),
		Currency: "USD",
		Status:   types.PurchaseStatusPending,
	}
	require.NoError(t, db.Create(&pending).Error)

	applied, err := Fail(db, pending.ID)
	require.NoError(t, err)
	require.True(t, applied)

	enrolled, err := enrollment.IsEnrolled(db, userID, seeded.ID)
	require.NoError(t, err)
	require.False(t, enrolled)
}

func TestInitiateRequiresLocalUser(t *testing.T) {
	db := openTestDB(t)

	seeded := seedCourse(t, db)

	_, err := Initiate(context.Background(), db, nil, config.PaymentConfig{Currency: "USD"},
		"ghost-"+uuid.NewString(), seeded.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	var count int64
	require.NoError(t, db.Model(&Purchase{}).Where("course_id = ?", seeded.ID).Count(&count).Error)
	require.Zero(t, count)
}
