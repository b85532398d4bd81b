package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	result := r.db.WithContext(ctx).Create(msg)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).
			Str(log.FieldConversationID, msg.ConversationID).
			Msg("failed to insert message")
		return result.Error
	}
	return nil
}

// List returns messages in chronological order. The filter mirrors the
// history API: a "before" cursor for paging and an optional date range.
func (r *GormMessageRepository) List(ctx context.Context, conversationID string, filter MessageFilter) ([]domain.Message, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if filter.Before != nil {
		query = query.Where("timestamp < ?", *filter.Before)
	}
	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
		if filter.EndDate != nil {
			query = query.Where("timestamp <= ?", *filter.EndDate)
		}
	}

	var msgs []domain.Message
	if err := query.Order("timestamp DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}

	// Newest-first from the query, oldest-first to the caller.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *GormMessageRepository) Last(ctx context.Context, conversationID string) (*domain.Message, error) {
	var msg domain.Message
	result := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp DESC").
		First(&msg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, result.Error
	}
	return &msg, nil
}

func (r *GormMessageRepository) MarkRead(ctx context.Context, messageID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg domain.Message
		if err := tx.First(&msg, "message_id = ?", messageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessageNotFound
			}
			return err
		}
		if msg.ReadBy.Contains(userID) {
			return nil
		}
		msg.ReadBy = append(msg.ReadBy, userID)
		return tx.Model(&msg).Update("read_by", msg.ReadBy).Error
	})
}

func (r *GormMessageRepository) DeleteByConversation(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).Delete(&domain.Message{}, "conversation_id = ?", conversationID).Error
}
