package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/pkg/log"
)

// GormConversationRepository implements ConversationRepository using GORM.
//
// Participant and per-user flag lists are JSON text columns; membership
// queries use a LIKE on the quoted user id, which is exact for JSON string
// arrays.
type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func memberPattern(userID string) string {
	return `%"` + userID + `"%`
}

func (r *GormConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	result := r.db.WithContext(ctx).Create(conv)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Msg("failed to create conversation")
		return result.Error
	}
	return nil
}

func (r *GormConversationRepository) GetByConversationID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	result := r.db.WithContext(ctx).First(&conv, "conversation_id = ?", conversationID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, result.Error
	}
	return &conv, nil
}

func (r *GormConversationRepository) FindDirect(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	var conv domain.Conversation
	result := r.db.WithContext(ctx).
		Where("type = ?", "direct").
		Where("participants LIKE ?", memberPattern(userA)).
		Where("participants LIKE ?", memberPattern(userB)).
		First(&conv)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, result.Error
	}
	return &conv, nil
}

func (r *GormConversationRepository) ListForUser(ctx context.Context, userID string, archived bool) ([]domain.Conversation, error) {
	query := r.db.WithContext(ctx).
		Where("participants LIKE ?", memberPattern(userID))

	if archived {
		query = query.Where("archived_by LIKE ?", memberPattern(userID))
	} else {
		query = query.Where("archived_by NOT LIKE ?", memberPattern(userID))
	}

	var convs []domain.Conversation
	if err := query.Order("updated_at DESC").Limit(100).Find(&convs).Error; err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to list conversations")
		return nil, err
	}
	return convs, nil
}

func (r *GormConversationRepository) Touch(ctx context.Context, conversationID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Update("updated_at", at).Error
}

func (r *GormConversationRepository) SetPinned(ctx context.Context, conversationID, userID string, pinned bool) error {
	return r.mutateList(ctx, conversationID, "pinned_by",
		func(c *domain.Conversation) *domain.StringList { return &c.PinnedBy }, userID, pinned)
}

func (r *GormConversationRepository) SetArchived(ctx context.Context, conversationID, userID string, archived bool) error {
	return r.mutateList(ctx, conversationID, "archived_by",
		func(c *domain.Conversation) *domain.StringList { return &c.ArchivedBy }, userID, archived)
}

func (r *GormConversationRepository) Delete(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).Delete(&domain.Conversation{}, "conversation_id = ?", conversationID).Error
}

// RemoveParticipant pulls the user out of every conversation they belong to.
// Used on account deletion.
func (r *GormConversationRepository) RemoveParticipant(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var convs []domain.Conversation
		if err := tx.Where("participants LIKE ?", memberPattern(userID)).Find(&convs).Error; err != nil {
			return err
		}
		for i := range convs {
			kept := domain.StringList{}
			for _, p := range convs[i].Participants {
				if p != userID {
					kept = append(kept, p)
				}
			}
			if err := tx.Model(&convs[i]).Update("participants", kept).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormConversationRepository) mutateList(
	ctx context.Context,
	conversationID, column string,
	list func(*domain.Conversation) *domain.StringList,
	userID string,
	add bool,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv domain.Conversation
		if err := tx.First(&conv, "conversation_id = ?", conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}

		l := list(&conv)
		if add {
			if l.Contains(userID) {
				return nil
			}
			*l = append(*l, userID)
		} else {
			kept := domain.StringList{}
			for _, id := range *l {
				if id != userID {
					kept = append(kept, id)
				}
			}
			*l = kept
		}
		return tx.Model(&conv).Update(column, *l).Error
	})
}
