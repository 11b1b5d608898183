// Package main is the entry point for the chat API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Neeraj110/chatApp/internal/config"
	"github.com/Neeraj110/chatApp/internal/handler"
	"github.com/Neeraj110/chatApp/internal/media"
	"github.com/Neeraj110/chatApp/internal/middleware"
	natsclient "github.com/Neeraj110/chatApp/internal/nats"
	"github.com/Neeraj110/chatApp/internal/presence"
	"github.com/Neeraj110/chatApp/internal/realtime"
	"github.com/Neeraj110/chatApp/internal/service"
	"github.com/Neeraj110/chatApp/internal/store"
	"github.com/Neeraj110/chatApp/internal/ws"
	"github.com/Neeraj110/chatApp/pkg/logger"
	"github.com/Neeraj110/chatApp/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting chat API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-api", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// MongoDB
	mongoClient, db, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Error("failed to connect to MongoDB", zap.Error(err))
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Error("failed to ensure indexes", zap.Error(err))
		os.Exit(1)
	}

	// NATS
	nc, err := natsclient.Connect(ctx, natsclient.Config{
		URL:   cfg.NATSURL,
		Token: cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer nc.Close()

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	tracker := presence.NewTracker(rdb)

	// Media storage
	mediaStore, err := media.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		log.Error("failed to initialize media storage", zap.Error(err))
		os.Exit(1)
	}

	// Stores and services
	users := store.NewUserStore(db)
	convs := store.NewConversationStore(db)
	msgs := store.NewMessageStore(db)

	events := realtime.NewBroadcaster(nc, log)
	google := service.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	userSvc := service.NewUserService(users, mediaStore, google, cfg.JWTSecret, cfg.JWTExpiration, log)
	convSvc := service.NewConversationService(convs, msgs, users, mediaStore, events, log)
	msgSvc := service.NewMessageService(msgs, convs, users, mediaStore, events, log)

	// Socket hub
	hub := ws.NewHub(events, log)
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go func() {
		if err := hub.Run(hubCtx); err != nil && hubCtx.Err() == nil {
			log.Error("socket hub stopped", zap.Error(err))
		}
	}()

	// Handlers
	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		return mongoClient.Ping(ctx, nil)
	}, nc, tracker)
	userHandler := handler.NewUserHandler(userSvc, cfg.JWTExpiration, strings.HasPrefix(cfg.ClientOrigin, "https://"))
	convHandler := handler.NewConversationHandler(convSvc)
	msgHandler := handler.NewMessageHandler(msgSvc)
	groupHandler := handler.NewGroupHandler(convSvc)
	wsHandler := handler.NewWSHandler(hub, users, tracker, events, cfg.JWTSecret, cfg.ClientOrigin, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// Uploaded media is served statically under its public base path.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(mediaStore.Dir()))))

	r.Get("/ws", wsHandler.Serve)

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/google-login", userHandler.GoogleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret, users))

			r.Post("/logout", userHandler.Logout)
			r.Get("/profile", userHandler.Profile)
			r.Patch("/profile", userHandler.UpdateProfile)
			r.Patch("/avatar", userHandler.UpdateAvatar)
			r.Delete("/account", userHandler.DeleteAccount)
			r.Get("/allUsers", userHandler.AllUsers)
		})
	})

	r.Route("/api/messages", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, users))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/getConversations", convHandler.List)
		r.Post("/startConversation", convHandler.Start)
		r.Post("/send", msgHandler.Send)

		r.Post("/group", groupHandler.Create)
		r.Patch("/group", groupHandler.Update)
		r.Patch("/group/members/add", groupHandler.AddMembers)
		r.Patch("/group/members/remove", groupHandler.RemoveMembers)
		r.Post("/group/leave/{conversationId}", groupHandler.Leave)
		r.Delete("/group/{conversationId}", groupHandler.Delete)

		r.Get("/{conversationId}", msgHandler.List)
		r.Delete("/{conversationId}", convHandler.Delete)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	stopHub()

	log.Info("server stopped")
}
