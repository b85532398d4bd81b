package handler

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/NeelPanchal05/QuickChat/internal/domain"
	"github.com/NeelPanchal05/QuickChat/internal/mailer"
	"github.com/NeelPanchal05/QuickChat/internal/middleware"
	"github.com/NeelPanchal05/QuickChat/internal/repository"
	"github.com/NeelPanchal05/QuickChat/internal/token"
	pkglog "github.com/NeelPanchal05/QuickChat/pkg/log"
	"github.com/NeelPanchal05/QuickChat/pkg/response"
)

const otpTTL = 10 * time.Minute

// AuthHandler serves registration, login and account management.
type AuthHandler struct {
	users  repository.UserRepository
	signup repository.SignupRepository
	convs  repository.ConversationRepository
	tokens *token.Manager
	mail   mailer.Mailer
}

func NewAuthHandler(
	users repository.UserRepository,
	signup repository.SignupRepository,
	convs repository.ConversationRepository,
	tokens *token.Manager,
	mail mailer.Mailer,
) *AuthHandler {
	return &AuthHandler{
		users:  users,
		signup: signup,
		convs:  convs,
		tokens: tokens,
		mail:   mail,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	RealName string `json:"real_name"`
	UniqueID string `json:"unique_id"`
}

// Register stores a pending signup and emails a one-time code. The account
// does not exist until the code is verified.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	for _, login := range []string{req.Email, req.Username} {
		if _, err := h.users.GetByLogin(ctx, login); err == nil {
			response.Conflict(c, "User already exists")
			return
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			response.InternalError(c, "Failed to check existing users")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.InternalError(c, "Failed to process password")
		return
	}

	code, err := generateOTP()
	if err != nil {
		response.InternalError(c, "Failed to generate OTP")
		return
	}

	pending := &domain.PendingUser{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		RealName:     req.RealName,
		UniqueID:     req.UniqueID,
		CreatedAt:    time.Now(),
	}
	otp := &domain.OTP{
		Email:     req.Email,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := h.signup.UpsertPending(ctx, pending, otp); err != nil {
		response.InternalError(c, "Failed to start registration")
		return
	}

	body := fmt.Sprintf("<p>Your QuickChat verification code is <b>%s</b>. It expires in 10 minutes.</p>", code)
	if err := h.mail.Send(req.Email, "QuickChat verification code", body); err != nil {
		pkglog.L().Error().Err(err).Str("email", req.Email).Msg("failed to send OTP email")
		if derr := h.signup.DeleteSignup(ctx, req.Email); derr != nil {
			pkglog.L().Warn().Err(derr).Str("email", req.Email).Msg("failed to roll back signup")
		}
		response.InternalError(c, "Failed to send OTP email")
		return
	}

	response.Success(c, gin.H{"message": "OTP sent to your email"})
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// VerifyOTP promotes a pending signup to a real account.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	otp, err := h.signup.GetOTP(ctx, req.Email)
	if err != nil || otp.Code != req.OTP || time.Now().After(otp.ExpiresAt) {
		response.BadRequest(c, "Invalid or expired OTP")
		return
	}

	pending, err := h.signup.GetPending(ctx, req.Email)
	if err != nil {
		response.BadRequest(c, "No pending registration for this email")
		return
	}

	user := &domain.User{
		UserID:       domain.NewEntityID("user", time.Now()),
		Email:        pending.Email,
		Username:     pending.Username,
		PasswordHash: pending.PasswordHash,
		RealName:     pending.RealName,
		UniqueID:     pending.UniqueID,
		OnlineStatus: domain.StatusOffline,
		Verified:     true,
		BlockedUsers: domain.StringList{},
		CreatedAt:    time.Now(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		response.InternalError(c, "Failed to create account")
		return
	}
	if err := h.signup.DeleteSignup(ctx, req.Email); err != nil {
		pkglog.L().Warn().Err(err).Str("email", req.Email).Msg("failed to clean up signup state")
	}

	tok, err := h.tokens.Generate(user.UserID)
	if err != nil {
		response.InternalError(c, "Failed to issue token")
		return
	}
	response.Success(c, gin.H{"token": tok, "user": user})
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates by email or username.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.GetByLogin(c.Request.Context(), req.Login)
	if err != nil {
		response.Unauthorized(c, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		response.Unauthorized(c, "Invalid credentials")
		return
	}

	tok, err := h.tokens.Generate(user.UserID)
	if err != nil {
		response.InternalError(c, "Failed to issue token")
		return
	}
	response.Success(c, gin.H{"token": tok, "user": user})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, middleware.CurrentUser(c))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		response.Unauthorized(c, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		response.InternalError(c, "Failed to process password")
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), user.UserID, string(hash)); err != nil {
		response.InternalError(c, "Failed to update password")
		return
	}
	response.Success(c, gin.H{"message": "Password updated"})
}

// DeleteAccount removes the account and drops the user from every
// conversation they participate in.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	if err := h.convs.RemoveParticipant(ctx, user.UserID); err != nil {
		pkglog.L().Warn().Err(err).Str(pkglog.FieldUserID, user.UserID).Msg("failed to detach conversations")
	}
	if err := h.users.Delete(ctx, user.UserID); err != nil {
		response.InternalError(c, "Failed to delete account")
		return
	}
	response.Success(c, gin.H{"message": "Account deleted"})
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
