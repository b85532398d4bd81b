package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/pkg/log"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		log.Ctx(ctx).Error().Err(result.Error).Msg("failed to create user")
		return result.Error
	}
	return nil
}

func (r *GormUserRepository) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *GormUserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).First(&user, "email = ? OR username = ?", login, login)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *GormUserRepository) Search(ctx context.Context, query, excludeUserID string, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"

	var users []domain.User
	result := r.db.WithContext(ctx).
		Where("user_id <> ?", excludeUserID).
		Where("username LIKE ? OR real_name LIKE ? OR unique_id LIKE ?", pattern, pattern, pattern).
		Limit(limit).
		Find(&users)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Msg("user search failed")
		return nil, result.Error
	}
	return users, nil
}

func (r *GormUserRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]domain.User, error) {
	if len(userIDs) == 0 {
		return []domain.User{}, nil
	}
	var users []domain.User
	result := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (r *GormUserRepository) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Updates(fields).Error
}

func (r *GormUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (r *GormUserRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Delete(&domain.User{}, "user_id = ?", userID).Error
}

func (r *GormUserRepository) SetStatus(ctx context.Context, userID, status string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update("online_status", status).Error
}

func (r *GormUserRepository) Block(ctx context.Context, userID, targetID string) error {
	return r.mutateBlockList(ctx, userID, func(blocked domain.StringList) domain.StringList {
		if blocked.Contains(targetID) {
			return blocked
		}
		return append(blocked, targetID)
	})
}

func (r *GormUserRepository) Unblock(ctx context.Context, userID, targetID string) error {
	return r.mutateBlockList(ctx, userID, func(blocked domain.StringList) domain.StringList {
		out := blocked[:0]
		for _, id := range blocked {
			if id != targetID {
				out = append(out, id)
			}
		}
		return out
	})
}

func (r *GormUserRepository) IsBlocked(ctx context.Context, userID, targetID string) (bool, error) {
	user, err := r.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.BlockedUsers.Contains(targetID), nil
}

func (r *GormUserRepository) mutateBlockList(ctx context.Context, userID string, mutate func(domain.StringList) domain.StringList) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.First(&user, "user_id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		user.BlockedUsers = mutate(user.BlockedUsers)
		return tx.Model(&user).Update("blocked_users", user.BlockedUsers).Error
	})
}
