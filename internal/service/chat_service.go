package service

import (
	"context"
	"errors"
	"time"

	"github.com/NeelPanchal05/QuickChat/internal/audit"
	"github.com/NeelPanchal05/QuickChat/internal/cryptox"
	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/internal/hub"
	"github.com/NeelPanchal05/QuickChat/internal/presence"
	"github.com/NeelPanchal05/QuickChat/internal/repository"
	"github.com/NeelPanchal05/QuickChat/internal/spamguard"
	pkglog "github.com/NeelPanchal05/QuickChat/pkg/log"
)

// Rejection messages sent back to the originating connection.
const (
	msgConversationNotFound = "Conversation not found"
	msgRecipientBlocked     = "You cannot send messages to this user."
	msgSenderBlocked        = "You have blocked this user. Unblock to send messages."
)

type chatService struct {
	hub      *hub.Hub
	presence *presence.Table
	guard    *spamguard.Guard
	cipher   *cryptox.Cipher
	users    repository.UserRepository
	convs    repository.ConversationRepository
	msgs     repository.MessageRepository
	calls    repository.CallRepository
}

func NewChatService(
	h *hub.Hub,
	table *presence.Table,
	guard *spamguard.Guard,
	cipher *cryptox.Cipher,
	users repository.UserRepository,
	convs repository.ConversationRepository,
	msgs repository.MessageRepository,
	calls repository.CallRepository,
) ChatService {
	return &chatService{
		hub:      h,
		presence: table,
		guard:    guard,
		cipher:   cipher,
		users:    users,
		convs:    convs,
		msgs:     msgs,
		calls:    calls,
	}
}

// HandleConnect runs after a successful handshake: the connection becomes
// the user's presence entry, durable status flips to online, and everyone
// else learns about it.
func (s *chatService) HandleConnect(ctx context.Context, c *hub.Client) error {
	userID := c.Session.GetUserID()

	s.presence.OnConnect(c.ID, userID)

	if err := s.users.SetStatus(ctx, userID, domain.StatusOnline); err != nil {
		pkglog.Ctx(ctx).Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to persist online status")
	}

	audit.Log(ctx, audit.ActionConnect, userID, "user connected")

	return s.hub.BroadcastAll(&domain.PresenceEvent{
		Type:   domain.EvtUserOnline,
		UserID: userID,
	}, c.ID)
}

func (s *chatService) HandleJoinRoom(ctx context.Context, c *hub.Client, conversationID string) error {
	if conversationID == "" {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "conversation_id required"))
	}

	s.hub.JoinRoom(c, conversationID)
	audit.LogWithDetail(ctx, audit.ActionJoinRoom, c.Session.GetUserID(), conversationID, "joined room")
	return nil
}

// HandleSendMessage gates, persists, and fans out one chat message.
// Persistence strictly precedes the broadcast: a failed store write sends a
// single error event to the sender and nothing reaches the room.
func (s *chatService) HandleSendMessage(ctx context.Context, c *hub.Client, evt *domain.SendMessageEvent) error {
	userID := c.Session.GetUserID()

	allowed, reason := s.guard.Check(userID)
	if !allowed {
		audit.LogWithDetail(ctx, audit.ActionRateLimited, userID, reason, "message rejected")
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeRateLimited, reason))
	}

	conv, err := s.convs.GetByConversationID(ctx, evt.ConversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeRoomNotFound, msgConversationNotFound))
		}
		pkglog.Ctx(ctx).Error().Err(err).Msg("conversation lookup failed")
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "Failed to send message"))
	}

	// Both directions of the block relationship gate the send.
	if otherID := otherParticipant(conv, userID); otherID != "" {
		if blocked, err := s.users.IsBlocked(ctx, otherID, userID); err == nil && blocked {
			audit.Log(ctx, audit.ActionBlocked, userID, "recipient has blocked sender")
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeRelationshipBlocked, msgRecipientBlocked))
		}
		if blocked, err := s.users.IsBlocked(ctx, userID, otherID); err == nil && blocked {
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeRelationshipBlocked, msgSenderBlocked))
		}
	}

	msgType := evt.MessageType
	if msgType == "" {
		msgType = domain.MessageTypeText
	}

	// The heuristic gate only ever sees text bodies; attachment payloads
	// are opaque blobs and scanning them would be pathological.
	if msgType == domain.MessageTypeText {
		if isSpam, reason := spamguard.Classify(evt.Content); isSpam {
			audit.LogWithDetail(ctx, audit.ActionSpamRejected, userID, reason, "message rejected")
			return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeContentRejected, reason))
		}
	}

	stored := evt.Content
	if stored != "" {
		encrypted, err := s.cipher.Encrypt(stored)
		if err != nil {
			pkglog.Ctx(ctx).Error().Err(err).Msg("content encryption failed, storing plaintext")
		} else {
			stored = encrypted
		}
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		MessageID:      domain.NewEntityID("msg", now),
		ConversationID: evt.ConversationID,
		SenderID:       userID,
		Content:        stored,
		MessageType:    msgType,
		FileName:       evt.FileName,
		Timestamp:      now,
		ReadBy:         domain.StringList{userID},
	}

	if err := s.msgs.Insert(ctx, msg); err != nil {
		return c.SendEvent(domain.NewErrorEvent(domain.ErrCodeInternalError, "Failed to send message"))
	}
	if err := s.convs.Touch(ctx, evt.ConversationID, now); err != nil {
		pkglog.Ctx(ctx).Warn().Err(err).Str(pkglog.FieldConversationID, evt.ConversationID).Msg("failed to touch conversation")
	}

	audit.LogWithDetail(ctx, audit.ActionSendMessage, userID, msg.MessageID, "message sent")

	// Room members, sender included, receive the plaintext projection.
	out := *msg
	out.Content = evt.Content
	return s.hub.BroadcastToRoom(evt.ConversationID, &domain.NewMessageEvent{
		Type:    domain.EvtNewMessage,
		Message: out,
	}, "")
}

func (s *chatService) HandleTyping(ctx context.Context, c *hub.Client, conversationID string) error {
	// The sender never sees an echo of their own typing indicator.
	return s.hub.BroadcastToRoom(conversationID, &domain.UserTypingEvent{
		Type:           domain.EvtUserTyping,
		UserID:         c.Session.GetUserID(),
		ConversationID: conversationID,
	}, c.ID)
}

func (s *chatService) HandleMessageRead(ctx context.Context, c *hub.Client, evt *domain.MessageReadEvent) error {
	userID := c.Session.GetUserID()

	if err := s.msgs.MarkRead(ctx, evt.MessageID, userID); err != nil && !errors.Is(err, repository.ErrMessageNotFound) {
		pkglog.Ctx(ctx).Warn().Err(err).Str(pkglog.FieldMessageID, evt.MessageID).Msg("failed to mark message read")
	}

	return s.hub.BroadcastToRoom(evt.ConversationID, &domain.MessageReadOutEvent{
		Type:      domain.EvtMessageRead,
		MessageID: evt.MessageID,
		UserID:    userID,
	}, "")
}

// HandleCallUser relays a call invitation to the callee's single connection.
// An offline callee is a silent no-op so presence is never leaked to a
// blocked or unwanted caller.
func (s *chatService) HandleCallUser(ctx context.Context, c *hub.Client, evt *domain.CallUserEvent) error {
	callerID := c.Session.GetUserID()

	calleeConn, online := s.presence.ConnectionFor(evt.CalleeID)
	if !online {
		pkglog.Ctx(ctx).Debug().Str(pkglog.FieldUserID, callerID).Msg("call dropped, callee offline")
		return nil
	}

	caller, err := s.users.GetByUserID(ctx, callerID)
	if err != nil {
		pkglog.Ctx(ctx).Warn().Err(err).Str(pkglog.FieldUserID, callerID).Msg("caller profile lookup failed")
	}

	now := time.Now().UTC()
	record := &domain.CallRecord{
		CallID:    domain.NewEntityID("call", now),
		CallerID:  callerID,
		CalleeID:  evt.CalleeID,
		CallType:  evt.CallType,
		Status:    "initiated",
		Timestamp: now,
	}
	if err := s.calls.Insert(ctx, record); err != nil {
		pkglog.Ctx(ctx).Warn().Err(err).Msg("failed to record call history")
	}

	audit.LogWithDetail(ctx, audit.ActionCallRelay, callerID, evt.CalleeID, "call relayed")

	return s.hub.SendToClient(calleeConn, &domain.IncomingCallEvent{
		Type:     domain.EvtIncomingCall,
		Caller:   caller,
		CallerID: callerID,
		Signal:   evt.Signal,
		CallType: evt.CallType,
	})
}

func (s *chatService) HandleAcceptCall(ctx context.Context, c *hub.Client, evt *domain.AcceptCallEvent) error {
	callerConn, online := s.presence.ConnectionFor(evt.CallerID)
	if !online {
		return nil
	}
	return s.hub.SendToClient(callerConn, &domain.CallAcceptedEvent{
		Type:     domain.EvtCallAccepted,
		CalleeID: c.Session.GetUserID(),
		Signal:   evt.Signal,
	})
}

func (s *chatService) HandleRejectCall(ctx context.Context, c *hub.Client, evt *domain.RejectCallEvent) error {
	callerConn, online := s.presence.ConnectionFor(evt.CallerID)
	if !online {
		return nil
	}
	return s.hub.SendToClient(callerConn, &domain.CallRejectedEvent{Type: domain.EvtCallRejected})
}

func (s *chatService) HandleEndCall(ctx context.Context, c *hub.Client, evt *domain.EndCallEvent) error {
	peerConn, online := s.presence.ConnectionFor(evt.OtherUserID)
	if !online {
		return nil
	}
	return s.hub.SendToClient(peerConn, &domain.CallEndedEvent{Type: domain.EvtCallEnded})
}

// HandleDisconnect clears presence and announces the user offline. When the
// connection was already displaced by a reconnect the disconnect is a no-op:
// no status write, no offline broadcast.
func (s *chatService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	userID, ok := s.presence.OnDisconnect(c.ID)
	if !ok {
		return nil
	}

	if err := s.users.SetStatus(ctx, userID, domain.StatusOffline); err != nil {
		pkglog.Ctx(ctx).Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to persist offline status")
	}

	audit.Log(ctx, audit.ActionDisconnect, userID, "user disconnected")

	return s.hub.BroadcastAll(&domain.PresenceEvent{
		Type:   domain.EvtUserOffline,
		UserID: userID,
	}, "")
}

func otherParticipant(conv *domain.Conversation, userID string) string {
	for _, p := range conv.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
