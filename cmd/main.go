package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NeelPanchal05/QuickChat/internal/config"
	"github.com/NeelPanchal05/QuickChat/internal/cryptox"
	"github.com/NeelPanchal05/QuickChat/internal/handler"
	"github.com/NeelPanchal05/QuickChat/internal/hub"
	"github.com/NeelPanchal05/QuickChat/internal/mailer"
	"github.com/NeelPanchal05/QuickChat/internal/middleware"
	"github.com/NeelPanchal05/QuickChat/internal/presence"
	"github.com/NeelPanchal05/QuickChat/internal/repository"
	"github.com/NeelPanchal05/QuickChat/internal/service"
	"github.com/NeelPanchal05/QuickChat/internal/spamguard"
	"github.com/NeelPanchal05/QuickChat/internal/token"
	"github.com/NeelPanchal05/QuickChat/pkg/database"
	pkglog "github.com/NeelPanchal05/QuickChat/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		pkglog.L().Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "quickchat",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Repositories
	userRepo := repository.NewGormUserRepository(db)
	signupRepo := repository.NewGormSignupRepository(db)
	convRepo := repository.NewGormConversationRepository(db)
	msgRepo := repository.NewGormMessageRepository(db)
	callRepo := repository.NewGormCallRepository(db)

	// Crypto and auth
	cipher, err := cryptox.New(cfg.Auth.Secret)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize message cipher")
	}
	tokens := token.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)

	// Realtime core
	guard := spamguard.NewGuard(spamguard.Config{
		PerMinute:     cfg.RateLimit.PerMinute,
		PerHour:       cfg.RateLimit.PerHour,
		BlockDuration: cfg.RateLimit.BlockDuration,
	})
	table := presence.NewTable()
	wsHub := hub.NewHub()
	go wsHub.Run()

	chatSvc := service.NewChatService(wsHub, table, guard, cipher, userRepo, convRepo, msgRepo, callRepo)

	// Handlers
	mail := mailer.NewSMTPMailer(cfg.SMTP)
	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepo)
	handlers := &handler.Handlers{
		Auth:          handler.NewAuthHandler(userRepo, signupRepo, convRepo, tokens, mail),
		Users:         handler.NewUserHandler(userRepo, mail),
		Conversations: handler.NewConversationHandler(convRepo, msgRepo, userRepo, cipher, guard, wsHub),
		Calls:         handler.NewCallHandler(callRepo),
		WS:            handler.NewWSHandler(wsHub, chatSvc, tokens, cfg.WebSocket),
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, authMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Str("driver", cfg.Database.Driver).Msg("quickchat starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("quickchat stopped")
}
