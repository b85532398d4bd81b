package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/internal/middleware"
	"github.com/NeelPanchal05/QuickChat/internal/repository"
	"github.com/NeelPanchal05/QuickChat/pkg/response"
)

const defaultCallHistoryLimit = 50

// CallHandler serves call history.
type CallHandler struct {
	calls repository.CallRepository
}

func NewCallHandler(calls repository.CallRepository) *CallHandler {
	return &CallHandler{calls: calls}
}

// History lists calls the caller participated in, newest first.
func (h *CallHandler) History(c *gin.Context) {
	limit := defaultCallHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	user := middleware.CurrentUser(c)
	records, err := h.calls.ListForUser(c.Request.Context(), user.UserID, limit)
	if err != nil {
		response.InternalError(c, "Failed to load call history")
		return
	}
	if records == nil {
		records = []domain.CallRecord{}
	}
	response.Success(c, gin.H{"calls": records})
}

// Delete removes one call history entry.
func (h *CallHandler) Delete(c *gin.Context) {
	if err := h.calls.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.NotFound(c, "Call record not found")
		return
	}
	response.Success(c, gin.H{"message": "Call record deleted"})
}
