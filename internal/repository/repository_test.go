package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func seedUser(t *testing.T, repo *GormUserRepository, userID, email, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		UserID:       userID,
		Email:        email,
		Username:     username,
		OnlineStatus: domain.StatusOffline,
		BlockedUsers: domain.StringList{},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepositoryLookups(t *testing.T) {
	repo := NewGormUserRepository(testDB(t))
	ctx := context.Background()

	seedUser(t, repo, "u1", "alice@example.com", "alice")

	t.Run("by user id", func(t *testing.T) {
		user, err := repo.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("by email or username", func(t *testing.T) {
		byEmail, err := repo.GetByLogin(ctx, "alice@example.com")
		require.NoError(t, err)
		byName, err2 := repo.GetByLogin(ctx, "alice")
		require.NoError(t, err2)
		assert.Equal(t, byEmail.UserID, byName.UserID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.GetByUserID(ctx, "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepositorySearchExcludesCaller(t *testing.T) {
	repo := NewGormUserRepository(testDB(t))
	ctx := context.Background()

	seedUser(t, repo, "u1", "alice@example.com", "alice")
	seedUser(t, repo, "u2", "alicia@example.com", "alicia")
	seedUser(t, repo, "u3", "bob@example.com", "bob")

	results, err := repo.Search(ctx, "ali", "u1", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "u2", results[0].UserID)
}

func TestUserRepositoryBlockList(t *testing.T) {
	repo := NewGormUserRepository(testDB(t))
	ctx := context.Background()

	seedUser(t, repo, "u1", "alice@example.com", "alice")
	seedUser(t, repo, "u2", "bob@example.com", "bob")

	require.NoError(t, repo.Block(ctx, "u1", "u2"))
	// Blocking twice is idempotent.
	require.NoError(t, repo.Block(ctx, "u1", "u2"))

	blocked, err := repo.IsBlocked(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, blocked)

	// The relation is directional.
	blocked, err = repo.IsBlocked(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, blocked)

	user, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StringList{"u2"}, user.BlockedUsers)

	require.NoError(t, repo.Unblock(ctx, "u1", "u2"))
	blocked, err = repo.IsBlocked(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestUserRepositoryStatus(t *testing.T) {
	repo := NewGormUserRepository(testDB(t))
	ctx := context.Background()

	seedUser(t, repo, "u1", "alice@example.com", "alice")

	require.NoError(t, repo.SetStatus(ctx, "u1", domain.StatusOnline))
	user, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnline, user.OnlineStatus)
}

func TestSignupRepositoryLifecycle(t *testing.T) {
	repo := NewGormSignupRepository(testDB(t))
	ctx := context.Background()

	pending := &domain.PendingUser{Email: "new@example.com", Username: "newbie", PasswordHash: "x"}
	otp := &domain.OTP{Email: "new@example.com", Code: "123456", ExpiresAt: time.Now().Add(10 * time.Minute)}
	require.NoError(t, repo.UpsertPending(ctx, pending, otp))

	t.Run("reads back both rows", func(t *testing.T) {
		got, err := repo.GetOTP(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "123456", got.Code)

		p, err := repo.GetPending(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "newbie", p.Username)
	})

	t.Run("re-registration replaces the previous code", func(t *testing.T) {
		again := &domain.PendingUser{Email: "new@example.com", Username: "newbie", PasswordHash: "y"}
		require.NoError(t, repo.UpsertPending(ctx, again, &domain.OTP{
			Email: "new@example.com", Code: "654321", ExpiresAt: time.Now().Add(10 * time.Minute),
		}))

		got, err := repo.GetOTP(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "654321", got.Code)
	})

	t.Run("delete clears everything", func(t *testing.T) {
		require.NoError(t, repo.DeleteSignup(ctx, "new@example.com"))
		_, err := repo.GetOTP(ctx, "new@example.com")
		assert.ErrorIs(t, err, ErrOTPNotFound)
		_, err = repo.GetPending(ctx, "new@example.com")
		assert.ErrorIs(t, err, ErrPendingNotFound)
	})
}

func seedConversation(t *testing.T, repo *GormConversationRepository, id string, participants ...string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, repo.Create(context.Background(), &domain.Conversation{
		ConversationID: id,
		Type:           "direct",
		Participants:   domain.StringList(participants),
		PinnedBy:       domain.StringList{},
		ArchivedBy:     domain.StringList{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}))
}

func TestConversationRepositoryFindDirect(t *testing.T) {
	repo := NewGormConversationRepository(testDB(t))
	ctx := context.Background()

	seedConversation(t, repo, "c1", "u1", "u2")
	seedConversation(t, repo, "c2", "u1", "u3")

	conv, err := repo.FindDirect(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "c1", conv.ConversationID)

	_, err = repo.FindDirect(ctx, "u2", "u3")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationRepositoryListFiltersArchived(t *testing.T) {
	repo := NewGormConversationRepository(testDB(t))
	ctx := context.Background()

	seedConversation(t, repo, "c1", "u1", "u2")
	seedConversation(t, repo, "c2", "u1", "u3")
	require.NoError(t, repo.SetArchived(ctx, "c2", "u1", true))

	active, err := repo.ListForUser(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "c1", active[0].ConversationID)

	archived, err := repo.ListForUser(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "c2", archived[0].ConversationID)

	// Archiving is per user: u3 still sees c2 as active.
	activeU3, err := repo.ListForUser(ctx, "u3", false)
	require.NoError(t, err)
	require.Len(t, activeU3, 1)
	assert.Equal(t, "c2", activeU3[0].ConversationID)
}

func TestConversationRepositoryListOrdersByActivity(t *testing.T) {
	repo := NewGormConversationRepository(testDB(t))
	ctx := context.Background()

	seedConversation(t, repo, "c1", "u1", "u2")
	seedConversation(t, repo, "c2", "u1", "u3")
	require.NoError(t, repo.Touch(ctx, "c1", time.Now().Add(time.Hour)))

	convs, err := repo.ListForUser(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "c1", convs[0].ConversationID)
}

func TestConversationRepositoryPinFlags(t *testing.T) {
	repo := NewGormConversationRepository(testDB(t))
	ctx := context.Background()

	seedConversation(t, repo, "c1", "u1", "u2")

	require.NoError(t, repo.SetPinned(ctx, "c1", "u1", true))
	conv, err := repo.GetByConversationID(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, conv.PinnedBy.Contains("u1"))
	assert.False(t, conv.PinnedBy.Contains("u2"))

	require.NoError(t, repo.SetPinned(ctx, "c1", "u1", false))
	conv, err = repo.GetByConversationID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, conv.PinnedBy.Contains("u1"))

	assert.ErrorIs(t, repo.SetPinned(ctx, "missing", "u1", true), ErrConversationNotFound)
}

func TestConversationRepositoryRemoveParticipant(t *testing.T) {
	repo := NewGormConversationRepository(testDB(t))
	ctx := context.Background()

	seedConversation(t, repo, "c1", "u1", "u2")
	seedConversation(t, repo, "c2", "u1", "u3")

	require.NoError(t, repo.RemoveParticipant(ctx, "u1"))

	conv, err := repo.GetByConversationID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StringList{"u2"}, conv.Participants)

	convs, err := repo.ListForUser(ctx, "u1", false)
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func seedMessages(t *testing.T, repo *GormMessageRepository, conversationID string, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Insert(context.Background(), &domain.Message{
			MessageID:      fmt.Sprintf("m%d", i),
			ConversationID: conversationID,
			SenderID:       "u1",
			Content:        fmt.Sprintf("message %d", i),
			MessageType:    domain.MessageTypeText,
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			ReadBy:         domain.StringList{"u1"},
		}))
	}
}

func TestMessageRepositoryList(t *testing.T) {
	repo := NewGormMessageRepository(testDB(t))
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedMessages(t, repo, "c1", 10, base)

	t.Run("returns oldest first within the limit of newest", func(t *testing.T) {
		msgs, err := repo.List(ctx, "c1", MessageFilter{Limit: 3})
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "m7", msgs[0].MessageID)
		assert.Equal(t, "m9", msgs[2].MessageID)
	})

	t.Run("before cursor pages backwards", func(t *testing.T) {
		cursor := base.Add(5 * time.Minute)
		msgs, err := repo.List(ctx, "c1", MessageFilter{Before: &cursor, Limit: 3})
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "m2", msgs[0].MessageID)
		assert.Equal(t, "m4", msgs[2].MessageID)
	})

	t.Run("date range", func(t *testing.T) {
		start := base.Add(2 * time.Minute)
		end := base.Add(4 * time.Minute)
		msgs, err := repo.List(ctx, "c1", MessageFilter{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "m2", msgs[0].MessageID)
		assert.Equal(t, "m4", msgs[2].MessageID)
	})

	t.Run("unknown conversation is empty", func(t *testing.T) {
		msgs, err := repo.List(ctx, "nope", MessageFilter{})
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})
}

func TestMessageRepositoryLastAndMarkRead(t *testing.T) {
	repo := NewGormMessageRepository(testDB(t))
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedMessages(t, repo, "c1", 3, base)

	last, err := repo.Last(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "m2", last.MessageID)

	require.NoError(t, repo.MarkRead(ctx, "m2", "u2"))
	// Marking twice is idempotent.
	require.NoError(t, repo.MarkRead(ctx, "m2", "u2"))

	last, err = repo.Last(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StringList{"u1", "u2"}, last.ReadBy)

	assert.ErrorIs(t, repo.MarkRead(ctx, "ghost", "u2"), ErrMessageNotFound)

	require.NoError(t, repo.DeleteByConversation(ctx, "c1"))
	_, err = repo.Last(ctx, "c1")
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestCallRepository(t *testing.T) {
	repo := NewGormCallRepository(testDB(t))
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, pair := range [][2]string{{"u1", "u2"}, {"u2", "u1"}, {"u3", "u4"}} {
		require.NoError(t, repo.Insert(ctx, &domain.CallRecord{
			CallID:    fmt.Sprintf("call%d", i),
			CallerID:  pair[0],
			CalleeID:  pair[1],
			CallType:  "video",
			Status:    "initiated",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	t.Run("lists both directions newest first", func(t *testing.T) {
		records, err := repo.ListForUser(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "call1", records[0].CallID)
		assert.Equal(t, "call0", records[1].CallID)
	})

	t.Run("delete removes one entry", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "call0"))
		records, err := repo.ListForUser(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
	})
}
