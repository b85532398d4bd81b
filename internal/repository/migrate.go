package repository

import (
	"gorm.io/gorm"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
)

// Migrate creates or updates the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.PendingUser{},
		&domain.OTP{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.CallRecord{},
	)
}
