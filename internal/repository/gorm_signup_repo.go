package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
)

// GormSignupRepository implements SignupRepository using GORM.
type GormSignupRepository struct {
	db *gorm.DB
}

func NewGormSignupRepository(db *gorm.DB) *GormSignupRepository {
	return &GormSignupRepository{db: db}
}

func (r *GormSignupRepository) UpsertPending(ctx context.Context, pending *domain.PendingUser, otp *domain.OTP) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.OTP{}, "email = ?", pending.Email).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.PendingUser{}, "email = ?", pending.Email).Error; err != nil {
			return err
		}
		if err := tx.Create(otp).Error; err != nil {
			return err
		}
		return tx.Create(pending).Error
	})
}

func (r *GormSignupRepository) GetOTP(ctx context.Context, email string) (*domain.OTP, error) {
	var otp domain.OTP
	result := r.db.WithContext(ctx).First(&otp, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOTPNotFound
		}
		return nil, result.Error
	}
	return &otp, nil
}

func (r *GormSignupRepository) GetPending(ctx context.Context, email string) (*domain.PendingUser, error) {
	var pending domain.PendingUser
	result := r.db.WithContext(ctx).First(&pending, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, result.Error
	}
	return &pending, nil
}

func (r *GormSignupRepository) DeleteSignup(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.OTP{}, "email = ?", email).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.PendingUser{}, "email = ?", email).Error
	})
}
