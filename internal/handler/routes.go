package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/NeelPanchal05/QuickChat/internal/middleware"
)

// Handlers groups the HTTP and websocket handlers for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Conversations *ConversationHandler
	Calls         *CallHandler
	WS            *WSHandler
}

// RegisterRoutes wires all endpoints onto the router.
func (h *Handlers) RegisterRoutes(r *gin.Engine, auth *middleware.AuthMiddleware) {
	api := r.Group("/api")

	// Token is carried in the query string for websocket upgrades; the
	// handler verifies it itself before upgrading.
	api.GET("/ws", h.WS.HandleWebSocket)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/verify-otp", h.Auth.VerifyOTP)
		authGroup.POST("/login", h.Auth.Login)

		authGroup.GET("/me", auth.RequireAuth(), h.Auth.Me)
		authGroup.POST("/change-password", auth.RequireAuth(), h.Auth.ChangePassword)
		authGroup.DELETE("/delete-account", auth.RequireAuth(), h.Auth.DeleteAccount)
	}

	users := api.Group("/users", auth.RequireAuth())
	{
		users.GET("/search", h.Users.Search)
		users.PUT("/profile", h.Users.UpdateProfile)
		users.POST("/invite", h.Users.Invite)
		users.POST("/:user_id/block", h.Users.Block)
		users.DELETE("/:user_id/block", h.Users.Unblock)
		users.GET("/blocked", h.Users.Blocked)
	}

	convs := api.Group("/conversations", auth.RequireAuth())
	{
		convs.POST("", h.Conversations.Create)
		convs.GET("", h.Conversations.List)
		convs.GET("/:id/messages", h.Conversations.Messages)
		convs.POST("/:id/messages", h.Conversations.PostMessage)
		convs.POST("/:id/pin", h.Conversations.Pin)
		convs.DELETE("/:id/pin", h.Conversations.Unpin)
		convs.POST("/:id/archive", h.Conversations.Archive)
		convs.DELETE("/:id/archive", h.Conversations.Unarchive)
		convs.DELETE("/:id/messages", h.Conversations.ClearMessages)
		convs.DELETE("/:id", h.Conversations.Delete)
	}

	calls := api.Group("/calls", auth.RequireAuth())
	{
		calls.GET("/history", h.Calls.History)
		calls.DELETE("/:id", h.Calls.Delete)
	}
}
