package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	DefaultUploadsSubDir    = "uploads"
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultMediaQueueSize   = 200
	defaultNumMediaWorkers  = 4
	defaultThumbnailMaxSize = 300
	defaultPerPage          = 40
	maxPerPage              = 100
)

type Config struct {
	// server
	Port          string
	AllowedOrigin string

	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for stored assets (uploads, thumbs)
	UploadsPath      string // full-calculated path for original uploads
	ThumbnailsPath   string // full-calculated path for thumbnails

	// thumbnail generation settings
	ThumbnailMaxSize int

	// worker settings
	MediaQueueSize  int
	NumMediaWorkers int

	// media listing defaults
	DefaultPerPage int
	MaxPerPage     int

	// shared cache; empty means in-process memoization only
	RedisAddr string

	// auth
	JWTSecret string

	// bootstrap admin; both must be set for the account to be created
	AdminUsername string
	AdminPassword string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Warn().Err(err).Str("var", envVar).Str("value", valStr).Int("default", defaultVal).Msg("invalid integer env var, using default")
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "foldsnap.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	uploadsSubDir := getEnvOrDefault("UPLOADS_SUBDIR", DefaultUploadsSubDir)
	absUploadsPath := filepath.Join(absMediaStorage, uploadsSubDir)

	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)
	absThumbnailsPath := filepath.Join(absMediaStorage, thumbSubDir)

	cfg := Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		AllowedOrigin:    getEnvOrDefault("ALLOWED_ORIGIN", "http://localhost:5173"),
		DatabasePath:     dbPath,
		MediaStoragePath: absMediaStorage,
		UploadsPath:      absUploadsPath,
		ThumbnailsPath:   absThumbnailsPath,
		ThumbnailMaxSize: getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		MediaQueueSize:   getEnvIntOrDefault("MEDIA_QUEUE_SIZE", defaultMediaQueueSize),
		NumMediaWorkers:  getEnvIntOrDefault("NUM_MEDIA_WORKERS", defaultNumMediaWorkers),
		DefaultPerPage:   getEnvIntOrDefault("MEDIA_DEFAULT_PER_PAGE", defaultPerPage),
		MaxPerPage:       getEnvIntOrDefault("MEDIA_MAX_PER_PAGE", maxPerPage),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		JWTSecret:        getEnvOrDefault("JWT_SECRET", "dev-secret-change-me"),
		AdminUsername:    os.Getenv("ADMIN_USERNAME"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
	}

	return cfg, nil
}
