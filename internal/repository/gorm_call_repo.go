package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
)

// GormCallRepository implements CallRepository using GORM.
type GormCallRepository struct {
	db *gorm.DB
}

func NewGormCallRepository(db *gorm.DB) *GormCallRepository {
	return &GormCallRepository{db: db}
}

func (r *GormCallRepository) Insert(ctx context.Context, record *domain.CallRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *GormCallRepository) ListForUser(ctx context.Context, userID string, limit int) ([]domain.CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []domain.CallRecord
	result := r.db.WithContext(ctx).
		Where("caller_id = ? OR callee_id = ?", userID, userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

func (r *GormCallRepository) Delete(ctx context.Context, callID string) error {
	return r.db.WithContext(ctx).Delete(&domain.CallRecord{}, "call_id = ?", callID).Error
}
