package service

import (
	"context"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/internal/hub"
)

// ChatService is the event dispatcher behind every live connection. The
// websocket handler authenticates the handshake and then feeds inbound
// events here, one call per event type.
type ChatService interface {
	HandleConnect(ctx context.Context, c *hub.Client) error
	HandleJoinRoom(ctx context.Context, c *hub.Client, conversationID string) error
	HandleSendMessage(ctx context.Context, c *hub.Client, evt *domain.SendMessageEvent) error
	HandleTyping(ctx context.Context, c *hub.Client, conversationID string) error
	HandleMessageRead(ctx context.Context, c *hub.Client, evt *domain.MessageReadEvent) error
	HandleCallUser(ctx context.Context, c *hub.Client, evt *domain.CallUserEvent) error
	HandleAcceptCall(ctx context.Context, c *hub.Client, evt *domain.AcceptCallEvent) error
	HandleRejectCall(ctx context.Context, c *hub.Client, evt *domain.RejectCallEvent) error
	HandleEndCall(ctx context.Context, c *hub.Client, evt *domain.EndCallEvent) error
	HandleDisconnect(ctx context.Context, c *hub.Client) error
}
