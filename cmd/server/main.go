// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/config"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/handlers"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/middleware"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/ratelimit"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/realtime"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/chat"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/devicetoken"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/document"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/message"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/status"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/blob"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/chat_services"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/mail"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/otp"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/push"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/user_services"
)

const documentGCInterval = time.Hour

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseDSN != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
}

func main() {
	cfg := config.Load()

	db, err := openDB(cfg)
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Chat{},
		&domain.ChatMember{},
		&domain.Message{},
		&domain.MessageStatus{},
		&domain.MessageHide{},
		&domain.Document{},
		&domain.DeviceToken{},
	); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis Error: %v", err)
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	chatRepo := chat.NewChatRepository(db)
	messageRepo := message.NewMessageRepository(db)
	statusRepo := status.NewStatusRepository(db)
	documentRepo := document.NewDocumentRepository(db)
	deviceTokenRepo := devicetoken.NewDeviceTokenRepository(db)

	// --- Providers ---
	mailProvider, err := mail.NewSMTPProvider(&mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize mail provider: %v", err)
	}
	mailService := mail.NewService(mailProvider, mail.DefaultRetryConfig())

	pushProvider, err := push.NewGatewayProvider(&push.Config{
		APIURL:    cfg.PushAPIURL,
		ServerKey: cfg.PushServerKey,
		Timeout:   10 * time.Second,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize push provider: %v", err)
	}
	pushService := push.NewService(pushProvider, push.DefaultRetryConfig())

	blobStore, err := blob.NewMinioStore(&blob.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize object storage: %v", err)
	}
	if err := blobStore.EnsureBucket(ctx); err != nil {
		log.Fatalf("FATAL: Failed to ensure storage bucket: %v", err)
	}

	codeStore := otp.NewRedisStore(redisClient)

	// --- Services ---
	authService := user_services.NewAuthService(userRepo, codeStore, mailService,
		cfg.JWTSecretKey, cfg.OTPTTL, services.NewLogger("auth"))
	userService := user_services.NewUserService(userRepo, services.NewLogger("user"))
	deviceService := user_services.NewDeviceService(deviceTokenRepo, services.NewLogger("device"))

	hub := realtime.NewHub(services.NewLogger("realtime"))

	statusService := chat_services.NewStatusService(statusRepo, chatRepo, services.NewLogger("status"))
	chatService := chat_services.NewChatService(chatRepo, messageRepo, userRepo, statusService,
		services.NewLogger("chat"))
	messageService := chat_services.NewMessageService(messageRepo, chatRepo, userRepo, statusService,
		documentRepo, deviceTokenRepo, pushService, hub, services.NewLogger("message"))
	documentService := chat_services.NewDocumentService(documentRepo, blobStore,
		cfg.DocumentRetention, services.NewLogger("document"))

	// Clearing unread from a websocket session flows back into the ledger.
	hub.OnClearUnread = func(userID, chatID uint) {
		clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := messageService.MarkChatAsRead(clearCtx, chatID, userID); err != nil {
			log.Printf("[Hub] Failed to clear unread: chat=%d user=%d err=%v", chatID, userID, err)
		}
	}

	go documentService.RunGC(ctx, documentGCInterval)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, deviceService)
	chatHandler := handlers.NewChatHandler(chatService)
	messageHandler := handlers.NewMessageHandler(messageService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	wsHandler := handlers.NewWSHandler(hub, services.NewLogger("ws"))

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(authService)
	otpLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.OTPConfig())
	verifyLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.VerifyConfig())
	defer otpLimiter.Stop()
	defer verifyLimiter.Stop()

	r.Use(corsMiddleware)
	httpLogger := services.NewLogger("http")
	r.Use(middleware.RecoverPanic(httpLogger))
	r.Use(middleware.LoggingMiddleware(httpLogger))

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	r.Handle("/api/auth/otp",
		middleware.RateLimitMiddleware(otpLimiter, "otp")(http.HandlerFunc(authHandler.RequestOTP)),
	).Methods("POST")
	r.Handle("/api/auth/verify",
		middleware.RateLimitMiddleware(verifyLimiter, "verify")(
			middleware.AuthSuccessMiddleware(verifyLimiter)(http.HandlerFunc(authHandler.VerifyOTP))),
	).Methods("POST")
	r.HandleFunc("/api/auth/refresh", authHandler.Refresh).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/users/me", userHandler.Me).Methods("GET")
	api.HandleFunc("/users/me", userHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/users/me/devices", userHandler.RegisterDevice).Methods("POST")

	api.HandleFunc("/chats", chatHandler.ListChats).Methods("GET")
	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods("DELETE")
	api.HandleFunc("/chats/{id:[0-9]+}/members", chatHandler.Members).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}/members", chatHandler.AddMember).Methods("POST")

	api.HandleFunc("/chats/{id:[0-9]+}/messages", messageHandler.List).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}/messages", messageHandler.Send).Methods("POST")
	api.HandleFunc("/chats/{id:[0-9]+}/read", messageHandler.MarkRead).Methods("POST")
	api.HandleFunc("/messages/{messageId:[0-9]+}", messageHandler.Delete).Methods("DELETE")

	api.HandleFunc("/documents", documentHandler.Upload).Methods("POST")
	api.HandleFunc("/documents/{id:[0-9]+}/download", documentHandler.Download).Methods("GET")

	api.HandleFunc("/ws", wsHandler.Serve).Methods("GET")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server Error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
}
