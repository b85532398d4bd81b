package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/NeelPanchal05/QuickChat/internal/config"
	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/internal/hub"
	"github.com/NeelPanchal05/QuickChat/internal/service"
	"github.com/NeelPanchal05/QuickChat/internal/token"
	pkglog "github.com/NeelPanchal05/QuickChat/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades websocket connections and demuxes inbound events.
type WSHandler struct {
	hub     *hub.Hub
	service service.ChatService
	tokens  *token.Manager
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, svc service.ChatService, tokens *token.Manager, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:     h,
		service: svc,
		tokens:  tokens,
		wsCfg:   wsCfg,
	}
}

// HandleWebSocket authenticates the handshake and, only then, upgrades.
// A bad token refuses the connection outright instead of degrading it to an
// unauthenticated session.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID, err := h.tokens.Verify(c.Query("token"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		pkglog.L().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	connID := uuid.New().String()
	client := hub.NewClient(connID, h.hub, conn, domain.NewSession(connID, userID, ""), h.wsCfg)
	client.SetDisconnectHandler(func(cl *hub.Client) {
		if err := h.service.HandleDisconnect(context.Background(), cl); err != nil {
			pkglog.L().Warn().Err(err).Str(pkglog.FieldConnID, cl.ID).Msg("disconnect handling failed")
		}
	})

	h.hub.Register(client)

	go client.WritePump()
	go func() {
		if err := h.service.HandleConnect(context.Background(), client); err != nil {
			pkglog.L().Warn().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("connect handling failed")
		}
		client.ReadPump(h.handleEvent)
	}()
}

// handleEvent routes one inbound event to the dispatcher. A handler error
// never crashes the connection; rejections have already been delivered to
// the sender as error events.
func (h *WSHandler) handleEvent(client *hub.Client, message []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid event format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.EvtJoinRoom:
		var evt domain.JoinRoomEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid join_room event"))
			return
		}
		h.logHandlerErr(client, h.service.HandleJoinRoom(ctx, client, evt.ConversationID))

	case domain.EvtSendMessage:
		var evt domain.SendMessageEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Invalid send_message event"))
			return
		}
		h.logHandlerErr(client, h.service.HandleSendMessage(ctx, client, &evt))

	case domain.EvtTyping:
		var evt domain.TypingEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			return
		}
		h.logHandlerErr(client, h.service.HandleTyping(ctx, client, evt.ConversationID))

	case domain.EvtMessageRead:
		var evt domain.MessageReadEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			return
		}
		h.logHandlerErr(client, h.service.HandleMessageRead(ctx, client, &evt))

	case domain.EvtCallUser:
		var evt domain.CallUserEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			return
		}
		h.logHandlerErr(client, h.service.HandleCallUser(ctx, client, &evt))

	case domain.EvtAcceptCall:
		var evt domain.AcceptCallEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			return
		}
		h.logHandlerErr(client, h.service.HandleAcceptCall(ctx, client, &evt))

	case domain.EvtRejectCall:
		var evt domain.RejectCallEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			return
		}
		h.logHandlerErr(client, h.service.HandleRejectCall(ctx, client, &evt))

	case domain.EvtEndCall:
		var evt domain.EndCallEvent
		if err := json.Unmarshal(message, &evt); err != nil {
			return
		}
		h.logHandlerErr(client, h.service.HandleEndCall(ctx, client, &evt))

	default:
		client.SendEvent(domain.NewErrorEvent(domain.ErrCodeBadRequest, "Unknown event type"))
	}
}

func (h *WSHandler) logHandlerErr(client *hub.Client, err error) {
	if err != nil {
		pkglog.L().Warn().Err(err).Str(pkglog.FieldConnID, client.ID).Msg("event handling failed")
	}
}
