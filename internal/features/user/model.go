package user

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edumart/edumart-server-go/pkg/types"
)

// User mirrors an identity provider account. The primary key is the
// provider's user id, so rows are written by webhook sync rather than local
// signup.
type User struct {
	ID string `gorm:"type:varchar(64);primaryKey" json:"id"`
	types.TimestampModel
	FullName  string `gorm:"type:varchar(255)" json:"fullName"`
	Email     string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	AvatarURL string `gorm:"type:text" json:"avatarUrl"`
}

func (User) TableName() string {
	return "users"
}

// SyncInput carries the identity fields replicated from provider events.
type SyncInput struct {
	ID        string
	FullName  string
	Email     string
	AvatarURL string
}

// Upsert writes the replicated identity record, inserting or overwriting by
// provider id. Events may arrive out of order or more than once; last write
// wins.
func Upsert(db *gorm.DB, input SyncInput) error {
	record := User{
		ID:        input.ID,
		FullName:  input.FullName,
		Email:     input.Email,
		AvatarURL: input.AvatarURL,
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "avatar_url", "updated_at"}),
	}).Create(&record).Error
}

// Delete removes the replicated identity record. Deleting an unknown id is a
// no-op so webhook redelivery stays safe.
func Delete(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&User{}).Error
}

// Get returns the replicated user record by provider id.
func Get(db *gorm.DB, id string) (User, error) {
	var record User
	err := db.Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return record, nil
}

// ValidRole reports whether a role string is one the platform understands.
func ValidRole(role string) bool {
	return role == types.RoleStudent || role == types.RoleEducator
}
