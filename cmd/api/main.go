package main

import (
	"fmt"
	"log"
	"net/http"

	"lingua-chat/config"
	"lingua-chat/internal/domain/chat"
	"lingua-chat/internal/domain/user"
	"lingua-chat/internal/filestore"
	"lingua-chat/internal/handler"
	"lingua-chat/internal/middleware"
	"lingua-chat/internal/repository"
	"lingua-chat/internal/services"
	"lingua-chat/pkg/database"
	"lingua-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		mode = logger.ProductionMode
		gin.SetMode(gin.ReleaseMode)
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	// Connect to Database
	database.Connect(cfg)

	// Ensure the chat tables exist and carry the message metadata columns.
	// Failure is tolerated: the app still serves, the capability probe just
	// reports the older schema.
	if err := database.DB.AutoMigrate(
		&user.User{},
		&chat.Chat{},
		&chat.ChatMessage{},
	); err != nil {
		l.Warnf("Schema migration skipped: %v", err)
	}

	userRepo := repository.NewUserRepository(database.DB)
	capability := repository.NewSchemaCapability(database.DB)
	primary := repository.NewChatRepository(database.DB, capability, userRepo)
	store := filestore.NewStore(cfg.FallbackStorePath)
	fallback := repository.NewFallbackChatRepository(store, userRepo)

	chatService := services.NewChatService(primary, fallback, l)
	chatHandler := handler.NewChatHandler(chatService, cfg.MessagePageLimit)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(l))
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/chats", chatHandler.CreateChat)
		api.GET("/chats", chatHandler.ListChats)
		api.GET("/chats/:id/messages", chatHandler.ListMessages)
		api.POST("/chats/:id/messages", chatHandler.SendMessage)
		api.POST("/chats/:id/read", chatHandler.MarkRead)
		api.PUT("/messages/:id", chatHandler.EditMessage)
		api.DELETE("/messages/:id", chatHandler.DeleteMessage)
	}

	log.Printf("Starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
