package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	JWTTokenTTL            time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	StorageDir             string
	StorageBaseURL         string
	MaxUploadMB            int
	MeetingBaseURL         string
	NotificationChannel    string
	DashboardCacheTTL      time.Duration
	SSEKeepAlive           time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KELAS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Kelas API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.token_ttl", "24h")
	v.SetDefault("cloudinary.folder", "kelas/uploads")
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.base_url", "/uploads")
	v.SetDefault("storage.max_upload_mb", 25)
	v.SetDefault("meeting.base_url", "https://meet.jit.si")
	v.SetDefault("notification.channel", "kelas:notifications")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("sse.keep_alive", "30s")

	ttl, err := parseDuration(v.GetString("dashboard.cache_ttl"), "5m")
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	tokenTTL, err := parseDuration(v.GetString("jwt.token_ttl"), "24h")
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt token ttl: %w", err)
	}

	keepAlive, err := parseDuration(v.GetString("sse.keep_alive"), "30s")
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keep alive: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTokenTTL:            tokenTTL,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		StorageDir:             v.GetString("storage.dir"),
		StorageBaseURL:         v.GetString("storage.base_url"),
		MaxUploadMB:            v.GetInt("storage.max_upload_mb"),
		MeetingBaseURL:         v.GetString("meeting.base_url"),
		NotificationChannel:    v.GetString("notification.channel"),
		DashboardCacheTTL:      ttl,
		SSEKeepAlive:           keepAlive,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 25
	}

	return cfg, nil
}

func parseDuration(value, fallback string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}
	return time.ParseDuration(value)
}
