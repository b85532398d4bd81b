package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/internal/mailer"
	"github.com/NeelPanchal05/QuickChat/internal/middleware"
	"github.com/NeelPanchal05/QuickChat/internal/repository"
	pkglog "github.com/NeelPanchal05/QuickChat/pkg/log"
	"github.com/NeelPanchal05/QuickChat/pkg/response"
)

const defaultSearchLimit = 20

// UserHandler serves user discovery, profile and block-list operations.
type UserHandler struct {
	users repository.UserRepository
	mail  mailer.Mailer
}

func NewUserHandler(users repository.UserRepository, mail mailer.Mailer) *UserHandler {
	return &UserHandler{users: users, mail: mail}
}

// Search finds users by username, email or real name. The caller is never
// included in the results.
func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	user := middleware.CurrentUser(c)
	results, err := h.users.Search(c.Request.Context(), query, user.UserID, limit)
	if err != nil {
		response.InternalError(c, "Search failed")
		return
	}
	response.Success(c, gin.H{"users": results})
}

type updateProfileRequest struct {
	RealName     *string `json:"real_name"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profile_photo"`
}

// UpdateProfile applies the fields present in the request and leaves the
// rest untouched.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	fields := map[string]interface{}{}
	if req.RealName != nil {
		fields["real_name"] = *req.RealName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.ProfilePhoto != nil {
		fields["profile_photo"] = *req.ProfilePhoto
	}
	if len(fields) == 0 {
		response.BadRequest(c, "No profile fields to update")
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.users.UpdateProfile(c.Request.Context(), user.UserID, fields); err != nil {
		response.InternalError(c, "Failed to update profile")
		return
	}

	updated, err := h.users.GetByUserID(c.Request.Context(), user.UserID)
	if err != nil {
		response.InternalError(c, "Failed to load profile")
		return
	}
	response.Success(c, updated)
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Invite emails a join invitation to someone not yet on the platform.
func (h *UserHandler) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	body := fmt.Sprintf("<p><b>%s</b> invited you to chat on QuickChat. Sign up to start talking.</p>", user.Username)
	if err := h.mail.Send(req.Email, fmt.Sprintf("%s invited you to QuickChat", user.Username), body); err != nil {
		pkglog.L().Error().Err(err).Str("email", req.Email).Msg("failed to send invite email")
		response.InternalError(c, "Failed to send invite")
		return
	}
	response.Success(c, gin.H{"message": "Invite sent"})
}

// Block adds the target to the caller's block list.
func (h *UserHandler) Block(c *gin.Context) {
	h.setBlocked(c, true)
}

// Unblock removes the target from the caller's block list.
func (h *UserHandler) Unblock(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *UserHandler) setBlocked(c *gin.Context, blocked bool) {
	targetID := c.Param("user_id")
	user := middleware.CurrentUser(c)
	if targetID == "" || targetID == user.UserID {
		response.BadRequest(c, "Invalid target user")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.users.GetByUserID(ctx, targetID); err != nil {
		response.NotFound(c, "User not found")
		return
	}

	var err error
	if blocked {
		err = h.users.Block(ctx, user.UserID, targetID)
	} else {
		err = h.users.Unblock(ctx, user.UserID, targetID)
	}
	if err != nil {
		response.InternalError(c, "Failed to update block list")
		return
	}
	if blocked {
		response.Success(c, gin.H{"message": "User blocked"})
	} else {
		response.Success(c, gin.H{"message": "User unblocked"})
	}
}

// Blocked lists the profiles on the caller's block list.
func (h *UserHandler) Blocked(c *gin.Context) {
	user := middleware.CurrentUser(c)

	blocked, err := h.users.ListByUserIDs(c.Request.Context(), user.BlockedUsers)
	if err != nil {
		response.InternalError(c, "Failed to load blocked users")
		return
	}
	if blocked == nil {
		blocked = []domain.User{}
	}
	response.Success(c, gin.H{"blocked_users": blocked})
}
