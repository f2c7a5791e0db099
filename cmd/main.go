package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"anonchat/backend/internal/api/handler"
	"anonchat/backend/internal/config"
	"anonchat/backend/internal/matchmaker"
	"anonchat/backend/internal/models"
	"anonchat/backend/internal/session"
	"anonchat/backend/internal/storage"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Participant{},
		&models.Message{},
		&models.PendingEntry{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting AnonChat Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	// 1. Dependencies
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	sessions := session.NewStore(rdb)

	// 2. Matchmaker + queue janitor
	m := matchmaker.NewService(s, sessions)
	go m.Run(context.Background())

	// 3. Gin routing
	r := gin.Default()
	h := handler.NewHandler(m, s, sessions, cfg)

	api := r.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)

		authed := api.Group("", h.RequireAuth())
		{
			authed.POST("/find-partner", h.FindPartner)
			authed.GET("/poll-match", h.PollMatch)
			authed.POST("/cancel-search", h.CancelSearch)

			authed.GET("/chat/:chat_id", h.GetChat)
			authed.GET("/messages", h.GetMessages)
			authed.POST("/messages", h.PostMessage)
			authed.POST("/leave-chat", h.LeaveChat)

			authed.GET("/conversations", h.ListConversations)
			authed.GET("/conversations/:chat_id", h.GetConversation)
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
