package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User online status values persisted to the store.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Message types.
const (
	MessageTypeText       = "text"
	MessageTypeAttachment = "attachment"
)

// StringList is a []string stored as a JSON text column. Mongo-style list
// fields (participants, read_by, blocked_users, ...) map onto it.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", src)
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether s is in the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// User is a registered account.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	UserID       string     `gorm:"uniqueIndex;size:64" json:"user_id"`
	Email        string     `gorm:"uniqueIndex;size:255" json:"email"`
	Username     string     `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash string     `json:"-"`
	RealName     string     `json:"real_name"`
	UniqueID     string     `gorm:"size:64" json:"unique_id"`
	ProfilePhoto string     `json:"profile_photo"`
	Bio          string     `json:"bio"`
	OnlineStatus string     `gorm:"size:16" json:"online_status"`
	Verified     bool       `json:"verified"`
	BlockedUsers StringList `gorm:"type:text" json:"blocked_users"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PendingUser holds registration data awaiting OTP verification.
type PendingUser struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	Username     string    `gorm:"size:64" json:"username"`
	PasswordHash string    `json:"-"`
	RealName     string    `json:"real_name"`
	UniqueID     string    `gorm:"size:64" json:"unique_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// OTP is a one-time password issued during registration.
type OTP struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Email     string    `gorm:"index;size:255" json:"email"`
	Code      string    `gorm:"size:8" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Conversation groups messages between participants.
type Conversation struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	ConversationID string     `gorm:"uniqueIndex;size:64" json:"conversation_id"`
	Type           string     `gorm:"size:16" json:"type"`
	Participants   StringList `gorm:"type:text" json:"participants"`
	PinnedBy       StringList `gorm:"type:text" json:"pinned_by"`
	ArchivedBy     StringList `gorm:"type:text" json:"archived_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `gorm:"index" json:"updated_at"`
}

// Message is a single chat message. Content is stored encrypted; the
// plaintext projection is what gets broadcast and returned over the API.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	MessageID      string     `gorm:"uniqueIndex;size:64" json:"message_id"`
	ConversationID string     `gorm:"index;size:64" json:"conversation_id"`
	SenderID       string     `gorm:"size:64" json:"sender_id"`
	Content        string     `json:"content"`
	MessageType    string     `gorm:"size:16" json:"message_type"`
	FileName       string     `json:"file_name,omitempty"`
	Timestamp      time.Time  `gorm:"index" json:"timestamp"`
	ReadBy         StringList `gorm:"type:text" json:"read_by"`
}

// CallRecord is one entry in the call history.
type CallRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CallID    string    `gorm:"uniqueIndex;size:64" json:"call_id"`
	CallerID  string    `gorm:"index;size:64" json:"caller_id"`
	CalleeID  string    `gorm:"index;size:64" json:"callee_id"`
	CallType  string    `gorm:"size:16" json:"call_type"`
	Status    string    `gorm:"size:16" json:"status"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// NewEntityID builds time-based ids in the original wire format,
// e.g. "msg_1712345678_123456".
func NewEntityID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%06d", prefix, now.Unix(), now.Nanosecond()/1000)
}
