package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"subtrack/config"
	"subtrack/db"
	"subtrack/handlers"
	"subtrack/middleware"
	"subtrack/repository"
	"subtrack/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer conn.Close()

	if err := db.ApplySchema(conn, "schema.sql"); err != nil {
		log.Fatal("Failed to apply schema: ", err)
	}
	log.Println("Database schema verified")

	subRepo := repository.NewSubscriptionRepository(conn)
	userRepo := repository.NewUserRepository(conn)

	mailer := services.NewSendgridMailer(cfg.SendgridAPIKey, cfg.SendgridFromEmail)
	notifier := services.NewNotifier(subRepo, mailer, services.NotifierOptions{
		LookaheadDays:   cfg.ReminderLookaheadDays,
		SlackWebhookURL: cfg.SlackWebhookURL,
		ManageURL:       cfg.ClientURL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier.Start(ctx, cfg.ReminderHour)

	jwtSecret := []byte(cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(userRepo, jwtSecret)
	subHandler := handlers.NewSubscriptionHandler(subRepo)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		api.POST("/auth/signup", authHandler.Signup)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/logout", authHandler.Logout)
		api.GET("/user", authHandler.CurrentUser)

		subs := api.Group("/subscriptions", middleware.AuthRequired(jwtSecret))
		{
			subs.GET("", subHandler.List)
			subs.POST("", subHandler.Create)
			subs.DELETE("/:id", subHandler.Delete)
			subs.GET("/summary", subHandler.Summary)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Println("Server starting on port " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on :%s: %v", cfg.Port, err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
