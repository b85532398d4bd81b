package repository

import (
	"context"
	"time"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
)

// UserRepository persists accounts and the block list that backs the social
// graph boundary.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUserID(ctx context.Context, userID string) (*domain.User, error)
	// GetByLogin resolves an email or username to an account.
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
	Search(ctx context.Context, query, excludeUserID string, limit int) ([]domain.User, error)
	ListByUserIDs(ctx context.Context, userIDs []string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, userID string) error
	SetStatus(ctx context.Context, userID, status string) error
	Block(ctx context.Context, userID, targetID string) error
	Unblock(ctx context.Context, userID, targetID string) error
	// IsBlocked reports whether userID has targetID on their block list.
	IsBlocked(ctx context.Context, userID, targetID string) (bool, error)
}

// SignupRepository holds registrations awaiting OTP verification.
type SignupRepository interface {
	// UpsertPending replaces any previous signup state for the email.
	UpsertPending(ctx context.Context, pending *domain.PendingUser, otp *domain.OTP) error
	GetOTP(ctx context.Context, email string) (*domain.OTP, error)
	GetPending(ctx context.Context, email string) (*domain.PendingUser, error)
	// DeleteSignup removes OTP and pending rows for the email.
	DeleteSignup(ctx context.Context, email string) error
}

// ConversationRepository persists conversations.
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByConversationID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	// FindDirect returns the existing direct conversation between two users.
	FindDirect(ctx context.Context, userA, userB string) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID string, archived bool) ([]domain.Conversation, error)
	Touch(ctx context.Context, conversationID string, at time.Time) error
	SetPinned(ctx context.Context, conversationID, userID string, pinned bool) error
	SetArchived(ctx context.Context, conversationID, userID string, archived bool) error
	Delete(ctx context.Context, conversationID string) error
	RemoveParticipant(ctx context.Context, userID string) error
}

// MessageFilter narrows a message history query.
type MessageFilter struct {
	Before    *time.Time
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// MessageRepository persists messages. Content is stored encrypted.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	List(ctx context.Context, conversationID string, filter MessageFilter) ([]domain.Message, error)
	Last(ctx context.Context, conversationID string) (*domain.Message, error)
	// MarkRead adds userID to the message's read set (idempotent).
	MarkRead(ctx context.Context, messageID, userID string) error
	DeleteByConversation(ctx context.Context, conversationID string) error
}

// CallRepository persists call history.
type CallRepository interface {
	Insert(ctx context.Context, record *domain.CallRecord) error
	ListForUser(ctx context.Context, userID string, limit int) ([]domain.CallRecord, error)
	Delete(ctx context.Context, callID string) error
}
