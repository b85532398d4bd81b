package audit

import (
	"context"

	"github.com/NeelPanchal05/QuickChat/pkg/log"
)

// Audit actions for the realtime engine.
const (
	ActionConnect      = "chat.connect"
	ActionDisconnect   = "chat.disconnect"
	ActionJoinRoom     = "chat.join_room"
	ActionSendMessage  = "chat.send_message"
	ActionRateLimited  = "chat.rate_limited"
	ActionSpamRejected = "chat.spam_rejected"
	ActionBlocked      = "chat.blocked"
	ActionCallRelay    = "chat.call_relay"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
