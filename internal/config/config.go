package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	OTP       OTPConfig
	SMS       SMSConfig
	Upload    UploadConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type StorageConfig struct {
	DataDir        string
	BackupInterval time.Duration
	BackupRetain   int
}

type AuthConfig struct {
	APIKey        string
	JWTSecret     string
	JWTExpiration time.Duration
	AdminEmail    string
	AdminPassword string
}

type OTPConfig struct {
	Expiration  time.Duration
	MaxAttempts int
}

type SMSConfig struct {
	AuthKey    string
	TemplateID string
}

type UploadConfig struct {
	MaxFileSize      int64
	AllowedMimeTypes []string
}

type WebSocketConfig struct {
	MaxClients int
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

func Load() (*Config, error) {
	godotenv.Load()

	jwtExp, err := time.ParseDuration(getEnv("JWT_EXPIRATION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
	}

	backupInterval, err := time.ParseDuration(getEnv("BACKUP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKUP_INTERVAL: %w", err)
	}

	otpExp, err := time.ParseDuration(getEnv("OTP_EXPIRATION", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid OTP_EXPIRATION: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Storage: StorageConfig{
			DataDir:        getEnv("DATA_DIR", "./data"),
			BackupInterval: backupInterval,
			BackupRetain:   getEnvAsInt("BACKUP_RETAIN", 24),
		},
		Auth: AuthConfig{
			APIKey:        getEnv("API_KEY", "dev-api-key-change-in-production"),
			JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
			JWTExpiration: jwtExp,
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@franchiseos.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "changeme-now"),
		},
		OTP: OTPConfig{
			Expiration:  otpExp,
			MaxAttempts: getEnvAsInt("OTP_MAX_ATTEMPTS", 3),
		},
		SMS: SMSConfig{
			AuthKey:    getEnv("MSG91_AUTH_KEY", ""),
			TemplateID: getEnv("MSG91_TEMPLATE_ID", ""),
		},
		Upload: UploadConfig{
			MaxFileSize: int64(getEnvAsInt("MAX_FILE_SIZE", 524288000)),
			AllowedMimeTypes: splitList(getEnv("ALLOWED_MIME_TYPES",
				"video/mp4,video/webm,video/quicktime,image/jpeg,image/png,image/gif,image/webp")),
		},
		WebSocket: WebSocketConfig{
			MaxClients: getEnvAsInt("WS_MAX_CLIENTS", 20),
			WriteWait:  10 * time.Second,
			PongWait:   60 * time.Second,
			PingPeriod: 54 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization,X-API-Key,X-Device-Token"),
		},
	}, nil
}

// Path helpers keep every on-disk location derived from DATA_DIR.

func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataDir, "database.json")
}

func (s StorageConfig) AuditLogPath() string {
	return filepath.Join(s.DataDir, "audit.log")
}

func (s StorageConfig) BackupDir() string {
	return filepath.Join(s.DataDir, "backups")
}

func (s StorageConfig) ContentDir() string {
	return filepath.Join(s.DataDir, "content")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
