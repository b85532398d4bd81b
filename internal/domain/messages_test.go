package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Error codes are part of the wire protocol; clients match on these strings.
func TestErrorCodeValues(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", ErrCodeBadRequest)
	assert.Equal(t, "RATE_LIMITED", ErrCodeRateLimited)
	assert.Equal(t, "CONTENT_REJECTED", ErrCodeContentRejected)
	assert.Equal(t, "RELATIONSHIP_BLOCKED", ErrCodeRelationshipBlocked)
	assert.Equal(t, "ROOM_NOT_FOUND", ErrCodeRoomNotFound)
	assert.Equal(t, "INTERNAL_ERROR", ErrCodeInternalError)
}

func TestNewErrorEvent(t *testing.T) {
	evt := NewErrorEvent(ErrCodeRelationshipBlocked, "recipient has blocked you")

	assert.Equal(t, EvtError, evt.Type)
	assert.Equal(t, ErrCodeRelationshipBlocked, evt.Code)
	assert.Equal(t, "recipient has blocked you", evt.Message)
}
