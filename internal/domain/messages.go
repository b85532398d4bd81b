package domain

import "encoding/json"

// WebSocket event types from client.
const (
	EvtJoinRoom    = "join_room"
	EvtSendMessage = "send_message"
	EvtTyping      = "typing"
	EvtMessageRead = "message_read"
	EvtCallUser    = "call_user"
	EvtAcceptCall  = "accept_call"
	EvtRejectCall  = "reject_call"
	EvtEndCall     = "end_call"
)

// WebSocket event types to client.
const (
	EvtUserOnline   = "user_online"
	EvtUserOffline  = "user_offline"
	EvtNewMessage   = "new_message"
	EvtUserTyping   = "user_typing"
	EvtIncomingCall = "incoming_call"
	EvtCallAccepted = "call_accepted"
	EvtCallRejected = "call_rejected"
	EvtCallEnded    = "call_ended"
	EvtError        = "error"
)

// Error codes
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeContentRejected     = "CONTENT_REJECTED"
	ErrCodeRelationshipBlocked = "RELATIONSHIP_BLOCKED"
	ErrCodeRoomNotFound        = "ROOM_NOT_FOUND"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// BaseEvent is the envelope used to demux inbound events.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

type JoinRoomEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
}

type SendMessageEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	MessageType    string `json:"message_type"`
	FileName       string `json:"file_name,omitempty"`
}

type TypingEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
}

type MessageReadEvent struct {
	Type           string `json:"type"`
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
}

type CallUserEvent struct {
	Type     string          `json:"type"`
	CalleeID string          `json:"callee_id"`
	Signal   json.RawMessage `json:"signal"`
	CallType string          `json:"call_type"`
}

type AcceptCallEvent struct {
	Type     string          `json:"type"`
	CallerID string          `json:"caller_id"`
	Signal   json.RawMessage `json:"signal"`
}

type RejectCallEvent struct {
	Type     string `json:"type"`
	CallerID string `json:"caller_id"`
}

type EndCallEvent struct {
	Type        string `json:"type"`
	OtherUserID string `json:"other_user_id"`
}

// Server -> Client events

type PresenceEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type NewMessageEvent struct {
	Type string `json:"type"`
	Message
}

type UserTypingEvent struct {
	Type           string `json:"type"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}

type MessageReadOutEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
}

type IncomingCallEvent struct {
	Type     string          `json:"type"`
	Caller   *User           `json:"caller"`
	CallerID string          `json:"caller_id"`
	Signal   json.RawMessage `json:"signal"`
	CallType string          `json:"call_type"`
}

type CallAcceptedEvent struct {
	Type     string          `json:"type"`
	CalleeID string          `json:"callee_id"`
	Signal   json.RawMessage `json:"signal"`
}

type CallRejectedEvent struct {
	Type string `json:"type"`
}

type CallEndedEvent struct {
	Type string `json:"type"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    EvtError,
		Code:    code,
		Message: message,
	}
}
