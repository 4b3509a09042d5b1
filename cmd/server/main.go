package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"franchiseos-backend/internal/config"
	"franchiseos-backend/internal/handler"
	"franchiseos-backend/internal/middleware"
	"franchiseos-backend/internal/service"
	"franchiseos-backend/internal/sms"
	"franchiseos-backend/internal/store"
	"franchiseos-backend/internal/websocket"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	for _, dir := range []string{cfg.Storage.DataDir, cfg.Storage.BackupDir(), cfg.Storage.ContentDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	audit := store.NewAuditLogger(cfg.Storage.AuditLogPath())
	backups := store.NewBackupManager(cfg.Storage.BackupDir(), cfg.Storage.DatabasePath(), cfg.Storage.BackupRetain)

	db := store.New(cfg.Storage.DatabasePath(), audit)
	if err := db.Recover(backups); err != nil {
		log.Fatalf("Failed to recover database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	backupStop := make(chan struct{})
	go backups.Schedule(cfg.Storage.BackupInterval, backupStop)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxClients,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	var smsSender sms.Sender
	if cfg.SMS.AuthKey != "" {
		smsSender = sms.NewMSG91Client(cfg.SMS.AuthKey, cfg.SMS.TemplateID)
	} else {
		log.Printf("No SMS auth key configured, OTP codes will be logged to console")
		smsSender = sms.ConsoleSender{}
	}

	authService, err := service.NewAuthService(cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}
	franchiseService := service.NewFranchiseService(db, wsManager)
	contentService := service.NewContentService(db, wsManager)
	folderService := service.NewFolderService(db)
	assignmentService := service.NewAssignmentService(db, wsManager)
	playlistService := service.NewPlaylistService(db)
	analyticsService := service.NewAnalyticsService(db)
	deviceAuthService := service.NewDeviceAuthService(db, smsSender, wsManager, cfg.OTP.Expiration, cfg.OTP.MaxAttempts)

	authHandler := handler.NewAuthHandler(authService)
	franchiseHandler := handler.NewFranchiseHandler(franchiseService)
	contentHandler := handler.NewContentHandler(contentService, cfg.Storage.ContentDir(), cfg.Upload.MaxFileSize, cfg.Upload.AllowedMimeTypes)
	folderHandler := handler.NewFolderHandler(folderService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	deviceHandler := handler.NewDeviceHandler(franchiseService, playlistService, analyticsService)
	deviceAuthHandler := handler.NewDeviceAuthHandler(deviceAuthService)
	statsHandler := handler.NewStatsHandler(analyticsService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.Auth.JWTSecret)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", statsHandler.Health).Methods("GET", "OPTIONS")

	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")

	api.HandleFunc("/device-auth/send-otp", deviceAuthHandler.SendOTP).Methods("POST", "OPTIONS")
	api.HandleFunc("/device-auth/verify-otp", deviceAuthHandler.VerifyOTP).Methods("POST", "OPTIONS")
	api.HandleFunc("/device-auth/resend-otp", deviceAuthHandler.ResendOTP).Methods("POST", "OPTIONS")
	api.HandleFunc("/device-auth/status", deviceAuthHandler.CheckStatus).Methods("GET", "OPTIONS")

	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.AdminMiddleware(cfg.Auth.APIKey, authService))

	admin.HandleFunc("/franchises", franchiseHandler.Register).Methods("POST", "OPTIONS")
	admin.HandleFunc("/franchises", franchiseHandler.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/franchises/{id}", franchiseHandler.Get).Methods("GET", "OPTIONS")
	admin.HandleFunc("/franchises/{id}", franchiseHandler.Update).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/franchises/{id}", franchiseHandler.Delete).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/franchises/{id}/regenerate-token", franchiseHandler.RegenerateToken).Methods("POST", "OPTIONS")

	admin.HandleFunc("/content", contentHandler.Upload).Methods("POST", "OPTIONS")
	admin.HandleFunc("/content", contentHandler.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/content/{id}", contentHandler.Get).Methods("GET", "OPTIONS")
	admin.HandleFunc("/content/{id}", contentHandler.Update).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/content/{id}", contentHandler.Delete).Methods("DELETE", "OPTIONS")

	admin.HandleFunc("/folders", folderHandler.Create).Methods("POST", "OPTIONS")
	admin.HandleFunc("/folders", folderHandler.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/folders/{id}", folderHandler.Update).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/folders/{id}", folderHandler.Delete).Methods("DELETE", "OPTIONS")

	admin.HandleFunc("/assignments", assignmentHandler.Update).Methods("POST", "OPTIONS")
	admin.HandleFunc("/assignments", assignmentHandler.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/assignments/{deviceId}", assignmentHandler.Get).Methods("GET", "OPTIONS")
	admin.HandleFunc("/assignments/{deviceId}", assignmentHandler.Clear).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/assignments/{deviceId}/add", assignmentHandler.Add).Methods("POST", "OPTIONS")
	admin.HandleFunc("/assignments/{deviceId}/remove", assignmentHandler.Remove).Methods("POST", "OPTIONS")

	admin.HandleFunc("/stats", statsHandler.Stats).Methods("GET", "OPTIONS")

	device := api.PathPrefix("/device").Subrouter()
	device.Use(middleware.DeviceMiddleware(franchiseService))

	device.HandleFunc("/heartbeat", deviceHandler.Heartbeat).Methods("POST", "OPTIONS")
	device.HandleFunc("/playlist", deviceHandler.Playlist).Methods("GET", "OPTIONS")
	device.HandleFunc("/info", deviceHandler.Info).Methods("GET", "OPTIONS")
	device.HandleFunc("/report", deviceHandler.Report).Methods("POST", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.PathPrefix("/content/").Handler(
		http.StripPrefix("/content/", http.FileServer(http.Dir(cfg.Storage.ContentDir()))))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting FranchiseOS backend on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Data directory: %s", cfg.Storage.DataDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	close(backupStop)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
