package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NeelPanchal05/QuickChat/internal/cryptox"
	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/internal/hub"
	"github.com/NeelPanchal05/QuickChat/internal/middleware"
	"github.com/NeelPanchal05/QuickChat/internal/repository"
	"github.com/NeelPanchal05/QuickChat/internal/spamguard"
	pkglog "github.com/NeelPanchal05/QuickChat/pkg/log"
	"github.com/NeelPanchal05/QuickChat/pkg/response"
)

const defaultMessageLimit = 50

// ConversationHandler serves conversation CRUD and message history. The
// attachment upload path also fans the message out through the hub so
// connected clients see it without polling.
type ConversationHandler struct {
	convs  repository.ConversationRepository
	msgs   repository.MessageRepository
	users  repository.UserRepository
	cipher *cryptox.Cipher
	guard  *spamguard.Guard
	hub    *hub.Hub
}

func NewConversationHandler(
	convs repository.ConversationRepository,
	msgs repository.MessageRepository,
	users repository.UserRepository,
	cipher *cryptox.Cipher,
	guard *spamguard.Guard,
	h *hub.Hub,
) *ConversationHandler {
	return &ConversationHandler{
		convs:  convs,
		msgs:   msgs,
		users:  users,
		cipher: cipher,
		guard:  guard,
		hub:    h,
	}
}

type createConversationRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Create opens a direct conversation with another user, returning the
// existing one when the pair already has a conversation.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	if req.UserID == user.UserID {
		response.BadRequest(c, "Cannot start a conversation with yourself")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetByUserID(ctx, req.UserID); err != nil {
		response.NotFound(c, "User not found")
		return
	}

	existing, err := h.convs.FindDirect(ctx, user.UserID, req.UserID)
	if err == nil {
		response.Success(c, existing)
		return
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		response.InternalError(c, "Failed to look up conversation")
		return
	}

	now := time.Now()
	conv := &domain.Conversation{
		ConversationID: domain.NewEntityID("conv", now),
		Type:           "direct",
		Participants:   domain.StringList{user.UserID, req.UserID},
		PinnedBy:       domain.StringList{},
		ArchivedBy:     domain.StringList{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.convs.Create(ctx, conv); err != nil {
		response.InternalError(c, "Failed to create conversation")
		return
	}
	response.Success(c, conv)
}

// conversationView is the list projection: the conversation plus the other
// participant's profile, the decrypted last message and the caller's pin flag.
type conversationView struct {
	*domain.Conversation
	OtherUser   *domain.User    `json:"other_user,omitempty"`
	LastMessage *domain.Message `json:"last_message,omitempty"`
	Pinned      bool            `json:"pinned"`
}

// List returns the caller's conversations, newest activity first. Archived
// conversations are served only when ?archived=true.
func (h *ConversationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	archived := c.Query("archived") == "true"

	ctx := c.Request.Context()
	convs, err := h.convs.ListForUser(ctx, user.UserID, archived)
	if err != nil {
		response.InternalError(c, "Failed to load conversations")
		return
	}

	views := make([]conversationView, 0, len(convs))
	for i := range convs {
		conv := &convs[i]
		view := conversationView{
			Conversation: conv,
			Pinned:       conv.PinnedBy.Contains(user.UserID),
		}

		for _, pid := range conv.Participants {
			if pid == user.UserID {
				continue
			}
			if other, err := h.users.GetByUserID(ctx, pid); err == nil {
				view.OtherUser = other
			}
			break
		}

		if last, err := h.msgs.Last(ctx, conv.ConversationID); err == nil {
			h.decryptMessage(last)
			view.LastMessage = last
		}

		views = append(views, view)
	}
	response.Success(c, gin.H{"conversations": views})
}

// Messages returns decrypted history for a conversation, oldest first.
// Supports ?before=RFC3339, ?start_date / ?end_date and ?limit.
func (h *ConversationHandler) Messages(c *gin.Context) {
	conv, ok := h.memberConversation(c)
	if !ok {
		return
	}

	filter := repository.MessageFilter{Limit: defaultMessageLimit}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}
	for q, dst := range map[string]**time.Time{
		"before":     &filter.Before,
		"start_date": &filter.StartDate,
		"end_date":   &filter.EndDate,
	} {
		if raw := c.Query(q); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				response.BadRequest(c, "Invalid "+q+" timestamp")
				return
			}
			*dst = &t
		}
	}

	msgs, err := h.msgs.List(c.Request.Context(), conv.ConversationID, filter)
	if err != nil {
		response.InternalError(c, "Failed to load messages")
		return
	}
	for i := range msgs {
		h.decryptMessage(&msgs[i])
	}
	response.Success(c, gin.H{"messages": msgs})
}

type postMessageRequest struct {
	Content     string `json:"content" binding:"required"`
	MessageType string `json:"message_type"`
	FileName    string `json:"file_name"`
}

// PostMessage is the attachment upload path. It is rate-gated like the
// realtime path but skips content classification, since attachment payloads
// are data URLs rather than prose.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	conv, ok := h.memberConversation(c)
	if !ok {
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	if allowed, reason := h.guard.Check(user.UserID); !allowed {
		response.TooManyRequests(c, reason)
		return
	}

	if req.MessageType == "" {
		req.MessageType = domain.MessageTypeAttachment
	}

	now := time.Now()
	msg := &domain.Message{
		MessageID:      domain.NewEntityID("msg", now),
		ConversationID: conv.ConversationID,
		SenderID:       user.UserID,
		Content:        req.Content,
		MessageType:    req.MessageType,
		FileName:       req.FileName,
		Timestamp:      now,
		ReadBy:         domain.StringList{user.UserID},
	}

	stored := *msg
	if encrypted, err := h.cipher.Encrypt(msg.Content); err == nil {
		stored.Content = encrypted
	} else {
		pkglog.L().Warn().Err(err).Str(pkglog.FieldMessageID, msg.MessageID).Msg("storing message unencrypted")
	}

	ctx := c.Request.Context()
	if err := h.msgs.Insert(ctx, &stored); err != nil {
		response.InternalError(c, "Failed to store message")
		return
	}
	if err := h.convs.Touch(ctx, conv.ConversationID, now); err != nil {
		pkglog.L().Warn().Err(err).Str(pkglog.FieldConversationID, conv.ConversationID).Msg("failed to touch conversation")
	}

	if err := h.hub.BroadcastToRoom(conv.ConversationID, &domain.NewMessageEvent{
		Type:    domain.EvtNewMessage,
		Message: *msg,
	}, ""); err != nil {
		pkglog.L().Warn().Err(err).Str(pkglog.FieldConversationID, conv.ConversationID).Msg("broadcast failed")
	}

	response.Success(c, msg)
}

// Pin marks the conversation pinned for the caller.
func (h *ConversationHandler) Pin(c *gin.Context) {
	h.mutateFlag(c, "pin")
}

// Unpin clears the caller's pin.
func (h *ConversationHandler) Unpin(c *gin.Context) {
	h.mutateFlag(c, "unpin")
}

// Archive hides the conversation from the caller's main list.
func (h *ConversationHandler) Archive(c *gin.Context) {
	h.mutateFlag(c, "archive")
}

// Unarchive restores the conversation to the caller's main list.
func (h *ConversationHandler) Unarchive(c *gin.Context) {
	h.mutateFlag(c, "unarchive")
}

func (h *ConversationHandler) mutateFlag(c *gin.Context, action string) {
	conv, ok := h.memberConversation(c)
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	var err error
	switch action {
	case "pin":
		err = h.convs.SetPinned(ctx, conv.ConversationID, user.UserID, true)
	case "unpin":
		err = h.convs.SetPinned(ctx, conv.ConversationID, user.UserID, false)
	case "archive":
		err = h.convs.SetArchived(ctx, conv.ConversationID, user.UserID, true)
	case "unarchive":
		err = h.convs.SetArchived(ctx, conv.ConversationID, user.UserID, false)
	}
	if err != nil {
		response.InternalError(c, "Failed to update conversation")
		return
	}
	response.Success(c, gin.H{"message": "Conversation updated"})
}

// Delete removes the conversation and its messages.
func (h *ConversationHandler) Delete(c *gin.Context) {
	conv, ok := h.memberConversation(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.msgs.DeleteByConversation(ctx, conv.ConversationID); err != nil {
		response.InternalError(c, "Failed to delete messages")
		return
	}
	if err := h.convs.Delete(ctx, conv.ConversationID); err != nil {
		response.InternalError(c, "Failed to delete conversation")
		return
	}
	response.Success(c, gin.H{"message": "Conversation deleted"})
}

// ClearMessages deletes the history but keeps the conversation.
func (h *ConversationHandler) ClearMessages(c *gin.Context) {
	conv, ok := h.memberConversation(c)
	if !ok {
		return
	}

	if err := h.msgs.DeleteByConversation(c.Request.Context(), conv.ConversationID); err != nil {
		response.InternalError(c, "Failed to clear messages")
		return
	}
	response.Success(c, gin.H{"message": "Messages cleared"})
}

// memberConversation loads the :id conversation and enforces that the caller
// participates in it. Non-members get 404, not 403, so conversation ids are
// not probeable.
func (h *ConversationHandler) memberConversation(c *gin.Context) (*domain.Conversation, bool) {
	conv, err := h.convs.GetByConversationID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.NotFound(c, "Conversation not found")
		return nil, false
	}
	user := middleware.CurrentUser(c)
	if !conv.Participants.Contains(user.UserID) {
		response.NotFound(c, "Conversation not found")
		return nil, false
	}
	return conv, true
}

func (h *ConversationHandler) decryptMessage(msg *domain.Message) {
	plaintext, err := h.cipher.Decrypt(msg.Content)
	if err != nil {
		// Stored before encryption was enabled, or with a rotated key.
		return
	}
	msg.Content = plaintext
}
