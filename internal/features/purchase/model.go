package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/internal/features/course"
	"github.com/edumart/edumart-server-go/internal/features/enrollment"
	"github.com/edumart/edumart-server-go/internal/features/user"
	"github.com/edumart/edumart-server-go/pkg/config"
	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/payproc"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Purchase is one attempt to buy a course. It starts pending and is settled
// exactly once by a payment webhook, landing on completed or failed.
type Purchase struct {
	types.BaseModel
	UserID            string               `gorm:"type:varchar(64);not null;index" json:"userId"`
	CourseID          uuid.UUID            `gorm:"type:uuid;not null;index" json:"courseId"`
	Amount            types.Money          `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency          string               `gorm:"type:varchar(8);not null" json:"currency"`
	Status            types.PurchaseStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CheckoutSessionID string               `gorm:"type:varchar(128);index" json:"checkoutSessionId,omitempty"`

	Course *course.Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

func (Purchase) TableName() string {
	return "purchases"
}

// CheckoutResult is returned to the caller after a purchase is initiated.
type CheckoutResult struct {
	Purchase    Purchase `json:"purchase"`
	CheckoutURL string   `json:"checkoutUrl"`
}

// Initiate creates a pending purchase and requests a hosted checkout session
// for it. The amount is the course price with its discount applied, rounded
// to cents. A gateway failure marks the purchase failed before returning.
func Initiate(ctx context.Context, db *gorm.DB, pay *payproc.Client, cfg config.PaymentConfig, userID string, courseID uuid.UUID) (CheckoutResult, error) {
	// The token only proves identity; the local record may still be missing
	// when the identity sync webhook has not arrived yet.
	if _, err := user.Get(db, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return CheckoutResult{}, ErrUserNotFound
		}
		return CheckoutResult{}, err
	}

	target, err := course.Get(db, courseID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			return CheckoutResult{}, ErrCourseNotFound
		}
		return CheckoutResult{}, err
	}

	if !target.Published {
		return CheckoutResult{}, ErrCourseNotForSale
	}

	enrolled, err := enrollment.IsEnrolled(db, userID, courseID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if enrolled {
		return CheckoutResult{}, ErrAlreadyEnrolled
	}

	record := Purchase{
		UserID:   userID,
		CourseID: courseID,
		Amount:   CheckoutAmount(target.Price, target.Discount),
		Currency: cfg.Currency,
		Status:   types.PurchaseStatusPending,
	}

	if err := db.Create(&record).Error; err != nil {
		return CheckoutResult{}, err
	}

	session, err := pay.CreateCheckoutSession(ctx, payproc.CheckoutParams{
		Amount:      record.Amount.StringFixed(),
		Currency:    record.Currency,
		ProductName: target.Title,
		SuccessURL:  cfg.SuccessURL,
		CancelURL:   cfg.CancelURL,
		Metadata: map[string]string{
			"purchaseId": record.ID.String(),
		},
	})
	if err != nil {
		if _, failErr := Fail(db, record.ID); failErr != nil {
			return CheckoutResult{}, fmt.Errorf("mark purchase failed: %v (after %w)", failErr, err)
		}
		return CheckoutResult{}, err
	}

	err = db.Model(&Purchase{}).
		Where("id = ?", record.ID).
		Update("checkout_session_id", session.ID).Error
	if err != nil {
		return CheckoutResult{}, err
	}
	record.CheckoutSessionID = session.ID

	return CheckoutResult{Purchase: record, CheckoutURL: session.URL}, nil
}

// Complete settles a pending purchase as paid and enrolls the buyer, both in
// one transaction. A purchase already in a terminal state is left untouched
// and reported via the applied flag, which makes webhook redelivery safe.
func Complete(db *gorm.DB, purchaseID uuid.UUID) (applied bool, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		var record Purchase
		if err := tx.Where("id = ?", purchaseID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseNotFound
			}
			return err
		}

		result := tx.Model(&Purchase{}).
			Where("id = ? AND status = ?", purchaseID, types.PurchaseStatusPending).
			Update("status", types.PurchaseStatusCompleted)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		applied = true
		return enrollment.Enroll(tx, record.UserID, record.CourseID)
	})
	return applied, err
}

// Fail settles a pending purchase as failed. Terminal purchases are left
// untouched.
func Fail(db *gorm.DB, purchaseID uuid.UUID) (applied bool, err error) {
	var exists int64
	if err := db.Model(&Purchase{}).Where("id = ?", purchaseID).Count(&exists).Error; err != nil {
		return false, err
	}
	if exists == 0 {
		return false, ErrPurchaseNotFound
	}

	result := db.Model(&Purchase{}).
		Where("id = ? AND status = ?", purchaseID, types.PurchaseStatusPending).
		Update("status", types.PurchaseStatusFailed)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// List returns the user's purchases newest first, with the course attached.
func List(db *gorm.DB, userID string, params pagination.Params) ([]Purchase, int64, error) {
	base := db.Model(&Purchase{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []Purchase
	err := db.Where("user_id = ?", userID).
		Preload("Course").
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

// CheckoutAmount applies a course discount to its price and rounds to cents.
func CheckoutAmount(price types.Money, discount int) types.Money {
	return price.ApplyDiscountPercent(discount)
}

// CanSettle reports whether a purchase in the given state may still change.
func CanSettle(status types.PurchaseStatus) bool {
	return !status.IsTerminal()
}
